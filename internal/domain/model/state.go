package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// StateKind enumerates the engine states visible to consumers.
type StateKind int

// Engine states.
const (
	StateIdle StateKind = iota
	StateLoading
	StateReady
	StateError
)

var stateNames = [...]string{"idle", "loading", "ready", "error"}

func (k StateKind) String() string {
	if int(k) < len(stateNames) {
		return stateNames[k]
	}
	return fmt.Sprintf("state(%d)", int(k))
}

// MarshalText renders the kind by name.
func (k StateKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name.
func (k *StateKind) UnmarshalText(b []byte) error {
	for i, n := range stateNames {
		if n == string(b) {
			*k = StateKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", string(b))
}

// State is the value published by the poll scheduler. Score is set for Ready,
// and for Loading when an earlier cycle of the same session was Ready.
// Error and Idle never carry a score.
type State struct {
	Kind      StateKind `json:"state"`
	Score     *Score    `json:"score,omitempty"`
	Message   string    `json:"message,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Idle is the state of a session with nothing to show.
func Idle(now time.Time) State { return State{Kind: StateIdle, UpdatedAt: now} }

// Loading marks a cycle in progress; last may be nil.
func Loading(last *Score, now time.Time) State {
	return State{Kind: StateLoading, Score: cloneScore(last), UpdatedAt: now}
}

// Ready publishes a score.
func Ready(s Score, now time.Time) State {
	return State{Kind: StateReady, Score: &s, UpdatedAt: now}
}

// Failed publishes an error with no score.
func Failed(msg string, now time.Time) State {
	return State{Kind: StateError, Message: msg, UpdatedAt: now}
}

// Clone returns a copy that shares no memory with s.
func (s State) Clone() State {
	s.Score = cloneScore(s.Score)
	return s
}

// Displayed is the score a display should render: the published score for
// Ready and Loading, zero otherwise.
func (s State) Displayed() Score {
	if s.Score == nil || s.Kind == StateError || s.Kind == StateIdle {
		return Score{}
	}
	return *s.Score
}

func (s State) String() string {
	b, _ := json.Marshal(s)
	return string(b)
}

func cloneScore(s *Score) *Score {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
