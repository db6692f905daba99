package models

import "time"

// User is one credential record in users.json. The username is the map key
// in UserTable, not a field, and is case-sensitive and immutable.
//
// IsActive is a pointer so a record written before the field existed can be
// told apart from an explicitly deactivated one; the credential store
// backfills missing values on load, so records handed out by the store
// always have it set.
type User struct {
	PasswordHash string    `json:"password"`
	Approved     bool      `json:"approved"`
	IsAdmin      bool      `json:"is_admin"`
	FullName     string    `json:"full_name"`
	Kontakt      string    `json:"kontakt"`
	CreatedAt    time.Time `json:"created_at"`
	IsActive     *bool     `json:"is_active"`
}

// Active reports whether the account may authenticate. A missing is_active
// field counts as active.
func (u *User) Active() bool {
	return u.IsActive == nil || *u.IsActive
}

// UserTable is the whole persisted credential mapping. It is loaded and
// saved as a unit; there are no partial updates.
type UserTable struct {
	Users map[string]User `json:"users"`
}

// BoolPtr returns a pointer to b, for filling User.IsActive.
func BoolPtr(b bool) *bool {
	return &b
}
