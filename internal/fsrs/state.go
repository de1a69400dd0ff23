package fsrs

import "fmt"

// State is the learning phase of a (learner, item) pair.
//
// New is never persisted: a pair is new exactly when no scheduler state row
// exists for it. The first recorded review moves the pair into Learning.
type State int

const (
	New        State = iota // No review recorded yet.
	Learning                // Initial learning phase.
	Review                  // Graduated into the long-term review cycle.
	Relearning              // Lapsed, relearning.
)

var (
	stateNames = [...]string{New: "new", Learning: "learning", Review: "review", Relearning: "relearning"}

	stateByName = map[string]State{
		"new":        New,
		"learning":   Learning,
		"review":     Review,
		"relearning": Relearning,
	}
)

func (s State) isValid() bool {
	return s >= New && s <= Relearning
}

// String returns the lowercase state name used in storage and API payloads.
func (s State) String() string {
	if s.isValid() {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	if !s.isValid() {
		return nil, fmt.Errorf("fsrs: invalid state: %d", int(s))
	}
	return []byte(stateNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	v, ok := stateByName[string(text)]
	if !ok {
		return fmt.Errorf("fsrs: invalid state: %q", text)
	}
	*s = v
	return nil
}

// ParseState converts a stored state name back into a State.
func ParseState(name string) (State, error) {
	v, ok := stateByName[name]
	if !ok {
		return New, fmt.Errorf("fsrs: invalid state: %q", name)
	}
	return v, nil
}
