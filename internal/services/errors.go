package services

import "errors"

// Authentication and registration failure classes. Handlers are expected to
// report login failures generically; the distinct sentinels exist for
// logging and tests.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserDeactivated = errors.New("user deactivated")
	ErrBadPassword     = errors.New("bad password")
	ErrUsernameTaken   = errors.New("username taken")
)
