// Package dialog implements the conversational state machine that drives
// the operator bot. Each session holds a position in a static menu graph
// plus a data bag of values collected along the way. Transitions are
// looked up in an explicit table keyed by (state, event kind), so every
// reachable pair is enumerable and testable.
//
// The engine serializes events per session key: two taps on the same
// conversation are handled strictly in arrival order, while distinct
// sessions never block each other. Side effects (marketplace calls, feed
// uploads, persistence) happen inside the per-session critical section,
// which is what guarantees the ordering; storage backends keep their own
// internal locking short and never hold it across the network.
package dialog
