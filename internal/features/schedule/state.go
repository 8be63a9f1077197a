package schedule

import (
	"fmt"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusPaused   Status = "paused"
	StatusDisabled Status = "disabled"
)

type Transition string

const (
	TransitionPause   Transition = "pause"
	TransitionResume  Transition = "resume"
	TransitionDisable Transition = "disable"
)

// StateMachine enforces the schedule lifecycle.
//
//	[active] ──pause──► [paused]
//	    ▲                  │
//	    └─────resume───────┘
//
//	active and paused both reach [disabled] via disable; disabled is terminal
type StateMachine struct {
	transitions map[stateTransitionKey]Status
}

type stateTransitionKey struct {
	state      Status
	transition Transition
}

func NewStateMachine() *StateMachine {
	sm := &StateMachine{transitions: make(map[stateTransitionKey]Status)}

	sm.addTransition(StatusActive, TransitionPause, StatusPaused)
	sm.addTransition(StatusActive, TransitionDisable, StatusDisabled)
	sm.addTransition(StatusPaused, TransitionResume, StatusActive)
	sm.addTransition(StatusPaused, TransitionDisable, StatusDisabled)

	return sm
}

func (sm *StateMachine) addTransition(from Status, via Transition, to Status) {
	sm.transitions[stateTransitionKey{state: from, transition: via}] = to
}

// Transition returns the next state, or the current one with ErrInvalidTransition
func (sm *StateMachine) Transition(current Status, action Transition) (Status, error) {
	next, ok := sm.transitions[stateTransitionKey{state: current, transition: action}]
	if !ok {
		return current, fmt.Errorf("%w: cannot %s a %s schedule", ErrInvalidTransition, action, current)
	}
	return next, nil
}

func (sm *StateMachine) CanTransition(current Status, action Transition) bool {
	_, ok := sm.transitions[stateTransitionKey{state: current, transition: action}]
	return ok
}

// Toggle is pause for active schedules and resume for paused ones
func (sm *StateMachine) Toggle(current Status) (Status, error) {
	if current == StatusPaused {
		return sm.Transition(current, TransitionResume)
	}
	return sm.Transition(current, TransitionPause)
}

func (sm *StateMachine) IsTerminal(state Status) bool {
	return state == StatusDisabled
}
