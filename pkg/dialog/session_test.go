package dialog

import (
	"sync"
	"testing"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := newKeyedMutex()

	const workers = 16
	var counter, max int
	var track sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("chat-1")
			track.Lock()
			counter++
			if counter > max {
				max = counter
			}
			track.Unlock()

			track.Lock()
			counter--
			track.Unlock()
			km.Unlock("chat-1")
		}()
	}
	wg.Wait()

	if max != 1 {
		t.Fatalf("max concurrent holders = %d, want 1", max)
	}
}

func TestKeyedMutexDropsIdleEntries(t *testing.T) {
	km := newKeyedMutex()
	km.Lock("a")
	km.Lock("b")
	km.Unlock("a")
	km.Unlock("b")

	km.mu.Lock()
	defer km.mu.Unlock()
	if len(km.locks) != 0 {
		t.Fatalf("locks map has %d entries, want none after release", len(km.locks))
	}
}

func TestGoBackFromWizardClearsDraft(t *testing.T) {
	s := newSession("chat-1")
	s.State = StateAddClientID
	s.Bag[draftPrefix+"title"] = "globex"
	s.Bag[draftPrefix+"account_id"] = "7777"

	goBack(s)

	if s.State != StateEmployee {
		t.Fatalf("state = %s, want %s", s.State, StateEmployee)
	}
	if len(s.Bag) != 0 {
		t.Fatalf("bag = %v, want the draft cleared", s.Bag)
	}
}

func TestGoBackKeepsUnrelatedKeys(t *testing.T) {
	s := newSession("chat-1")
	s.State = StateStatsDateTo
	s.Bag[bagCustomer] = "acme"
	s.Bag[bagStatsPeriod] = "day"
	s.Bag[bagStatsDateFrom] = "2026-08-01"

	goBack(s)

	if s.State != StateCustomerMenu {
		t.Fatalf("state = %s, want %s", s.State, StateCustomerMenu)
	}
	if s.Bag[bagCustomer] != "acme" {
		t.Fatalf("customer = %q, want kept", s.Bag[bagCustomer])
	}
	if _, ok := s.Bag[bagStatsPeriod]; ok {
		t.Fatal("stats period survived back navigation")
	}
}
