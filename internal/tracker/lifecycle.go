package tracker

import "sync"

// Lifecycle holds a state behind a read-write lock,
// so that it can be polled while a transition is being applied.
type Lifecycle struct {
	mutex *sync.RWMutex
	state State
}

func NewLifecycle() *Lifecycle {
	return &Lifecycle{
		mutex: new(sync.RWMutex),
	}
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.state
}

// Set overwrites the current state.
func (l *Lifecycle) Set(s State) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.state = s
}

// Update applies the given function to the current state atomically.
// The state is left untouched if the function fails.
func (l *Lifecycle) Update(update func(s State) (State, error)) (State, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	next, err := update(l.state)
	if err != nil {
		return l.state, err
	}
	l.state = next
	return next, nil
}
