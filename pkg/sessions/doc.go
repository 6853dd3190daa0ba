// Package sessions defines the persistence contract for conversation
// state. A session records where an operator is in a dialog flow plus
// the data collected so far; backends decide how long it survives.
package sessions
