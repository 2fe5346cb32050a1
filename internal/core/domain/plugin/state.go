package plugindomain

import "fmt"

// State is the derived installation state of a plugin location.
// It is recomputed on every run and never persisted.
type State int

const (
	StateAbsent State = iota
	StateShallow
	StateBroken
	StateHealthy
)

// String returns the string representation of State
func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateShallow:
		return "shallow"
	case StateBroken:
		return "broken"
	case StateHealthy:
		return "healthy"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Verb is a dispatcher command
type Verb string

const (
	VerbInstall Verb = "install"
	VerbUpdate  Verb = "update"
	VerbClean   Verb = "clean"
	VerbInit    Verb = "init"
	VerbList    Verb = "list"
)

// String returns the string representation of Verb
func (v Verb) String() string { return string(v) }

// ActionKind is what the reconciler does to one location
type ActionKind int

const (
	ActionSkip ActionKind = iota
	ActionClone
	ActionPull
	ActionRecreate
	ActionRemove
)

// String returns the string representation of ActionKind
func (a ActionKind) String() string {
	switch a {
	case ActionSkip:
		return "skip"
	case ActionClone:
		return "clone"
	case ActionPull:
		return "pull"
	case ActionRecreate:
		return "recreate"
	case ActionRemove:
		return "remove"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Plan maps a verb and an observed state to an action.
//
//	verb    | absent | shallow  | broken   | healthy
//	install | clone  | skip     | recreate | skip
//	init    | clone  | skip     | recreate | skip
//	update  | clone  | recreate | recreate | pull
//
// Clean and list never plan per-declaration actions and always yield skip.
func Plan(verb Verb, state State) ActionKind {
	switch verb {
	case VerbInstall, VerbInit:
		switch state {
		case StateAbsent:
			return ActionClone
		case StateBroken:
			return ActionRecreate
		default:
			return ActionSkip
		}
	case VerbUpdate:
		switch state {
		case StateAbsent:
			return ActionClone
		case StateHealthy:
			return ActionPull
		default:
			return ActionRecreate
		}
	default:
		return ActionSkip
	}
}

// SkipReason explains a planned skip for the status line
func SkipReason(state State) string {
	switch state {
	case StateHealthy:
		return "already installed"
	case StateShallow:
		return "shallow clone present"
	default:
		return state.String()
	}
}
