package models

// AuthStatus is the application's local belief about authentication.
type AuthStatus string

const (
	StatusUnknown         AuthStatus = "unknown"
	StatusLoading         AuthStatus = "loading"
	StatusAuthenticated   AuthStatus = "authenticated"
	StatusUnauthenticated AuthStatus = "unauthenticated"
)

// AuthState is derived, in-memory state. User is set only when Status is
// StatusAuthenticated.
type AuthState struct {
	Status AuthStatus
	User   *User
}

func Unknown() AuthState         { return AuthState{Status: StatusUnknown} }
func Loading() AuthState         { return AuthState{Status: StatusLoading} }
func Unauthenticated() AuthState { return AuthState{Status: StatusUnauthenticated} }

func Authenticated(u *User) AuthState {
	return AuthState{Status: StatusAuthenticated, User: u}
}

// IsAuthenticated reports whether the state carries an authenticated user.
func (s AuthState) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated && s.User != nil
}
