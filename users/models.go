// Package users handles accounts: sign-up, login verification, profile
// lookup, and sparse profile updates.
package users

import "time"

// Profile is a user's public profile. The hashed password never leaves the
// service layer.
type Profile struct {
	ID        int       `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Gender    string    `json:"gender"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Age       int       `json:"age"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUser carries the validated fields of a sign-up request. Password is
// the plain text; hashing happens in the service.
type NewUser struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Gender    string
	City      string
	State     string
	Age       int
}

// ProfileUpdate is a sparse update payload. A nil field means "leave
// unchanged"; a present field replaces the stored value. This distinction
// is deliberate: empty strings are mapped to nil at the form-binding edge,
// so the service never treats emptiness as absence.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
	Gender    *string
	City      *string
	State     *string
	Age       *int
}

// Empty reports whether the update contains no fields.
func (u *ProfileUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Email == nil &&
		u.Password == nil && u.Gender == nil && u.City == nil &&
		u.State == nil && u.Age == nil
}
