package domain

import "time"

// User is the identity as reported by the external identity provider.
// Only ID is consumed by the favourites synchronizer.
type User struct {
	ID            string
	Email         string
	Name          string
	Avatar        string
	OAuthProvider string
	CreatedAt     time.Time
}

// DisplayName falls back to the email like the profile page does.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// RegistrationAction tells whether the user row was created by this call.
type RegistrationAction string

const (
	RegistrationCreated RegistrationAction = "created"
	RegistrationSkipped RegistrationAction = "skipped"
)
