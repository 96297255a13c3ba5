package identity

import "strings"

// AuthenticatedState is the authentication state of an identifier.
// The zero value behaves as Ambiguous.
type AuthenticatedState string

const (
	// Ambiguous means the user state is unknown. It is the default.
	Ambiguous AuthenticatedState = "ambiguous"

	// Authenticated means the user is identified by a login or similar action.
	Authenticated AuthenticatedState = "authenticated"

	// LoggedOut means the user was identified but has since logged out.
	LoggedOut AuthenticatedState = "loggedOut"
)

var authenticatedStates = []AuthenticatedState{Ambiguous, Authenticated, LoggedOut}

// ParseAuthenticatedState returns the state named by s, ignoring case.
// Unknown or empty names return Ambiguous and false.
func ParseAuthenticatedState(s string) (AuthenticatedState, bool) {
	for _, state := range authenticatedStates {
		if strings.EqualFold(s, string(state)) {
			return state, true
		}
	}
	return Ambiguous, false
}

// String returns the wire name of the state.
func (s AuthenticatedState) String() string {
	return string(s.normalize())
}

func (s AuthenticatedState) normalize() AuthenticatedState {
	state, _ := ParseAuthenticatedState(string(s))
	return state
}
