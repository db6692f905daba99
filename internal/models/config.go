package models

// BoxConfig is the persisted shared configuration: the rotating combination
// of the box lock. Visible only to approved and admin accounts.
type BoxConfig struct {
	CurrentCode string `json:"current_code"`
}
