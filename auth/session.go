package auth

import (
	"encoding/gob"
	"slices"

	"github.com/eringen/blogcms/content"
)

func init() {
	gob.Register(SessionUser{})
}

// SessionUser is the copy of a user stored in the session cookie at login.
// It is not refreshed when the stored user changes.
type SessionUser struct {
	UserName     string
	Email        string
	LoginHistory []content.LoginEntry
}

// NewSessionUser snapshots u without its password hash.
func NewSessionUser(u content.User) SessionUser {
	return SessionUser{
		UserName:     u.UserName,
		Email:        u.Email,
		LoginHistory: slices.Clone(u.LoginHistory),
	}
}
