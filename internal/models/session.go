package models

// SessionState is the explicit session state machine. Encoding the state
// as a tagged value keeps illegal combinations (a child session with no
// child record, say) out of the session engine.
type SessionState int

const (
	StateLoggedOut SessionState = iota
	StateParentActive
	StateChildActive
)

func (s SessionState) String() string {
	switch s {
	case StateParentActive:
		return "parent_active"
	case StateChildActive:
		return "child_active"
	default:
		return "logged_out"
	}
}
