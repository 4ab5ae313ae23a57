package models

import "strings"

// Session is the auth store's state.
type Session struct {
	User          *User `json:"user"`
	Authenticated bool  `json:"isAuthenticated"`
}

// AuthState is what the auth store persists: the session and, when roster
// enrolment is on, the accounts created through registration.
type AuthState struct {
	Session
	Enrolled []User `json:"enrolled,omitempty"`
}

// AppState is what the data store persists.
type AppState struct {
	Users    []User   `json:"users"`
	Plaques  []Plaque `json:"plaques"`
	DarkMode bool     `json:"darkMode"`
}

// Clone returns a deep copy of s, safe to hand out to readers.
func (s AppState) Clone() AppState {
	out := AppState{DarkMode: s.DarkMode}
	out.Users = append(make([]User, 0, len(s.Users)), s.Users...)
	out.Plaques = append(make([]Plaque, 0, len(s.Plaques)), s.Plaques...)
	return out
}

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T {
	return &v
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func joinNonEmpty(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
