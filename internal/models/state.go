package models

import (
	"fmt"
	"strings"
)

// State is the enumerated status of a row
type State string

const (
	StateAll    State = "all"
	StateOpen   State = "open"
	StateClosed State = "closed"
)

// States lists every valid state in display order
var States = []State{StateAll, StateOpen, StateClosed}

// Valid reports whether s is one of the known states
func (s State) Valid() bool {
	switch s {
	case StateAll, StateOpen, StateClosed:
		return true
	}
	return false
}

// Label returns the human readable label for the state
func (s State) Label() string {
	switch s {
	case StateAll:
		return "All"
	case StateOpen:
		return "Unresolved"
	case StateClosed:
		return "Resolved"
	}
	return ""
}

// ParseState converts a string to a State (case-insensitive)
func ParseState(s string) (State, error) {
	state := State(strings.ToLower(strings.TrimSpace(s)))
	if !state.Valid() {
		return "", fmt.Errorf("invalid state %q: must be one of all, open, closed", s)
	}
	return state, nil
}
