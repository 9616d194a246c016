package jobquery

import "time"

// Observer receives validation and code-list events. Implementations must be
// safe for concurrent use.
type Observer interface {
	// CriterionObserved is called once per criterion; code is empty when the
	// value was accepted.
	CriterionObserved(field, code string)
	// CodeListLoaded is called after every source load attempt.
	CodeListLoaded(source string, took time.Duration, err error)
}

// NopObserver discards every event.
type NopObserver struct{}

// CriterionObserved does nothing.
func (NopObserver) CriterionObserved(string, string) {}

// CodeListLoaded does nothing.
func (NopObserver) CodeListLoaded(string, time.Duration, error) {}
