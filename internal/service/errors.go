package service

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrNotFound           = errors.New("task not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotAuthorized      = errors.New("not authorized")

	// ErrUnknownActor means a validly signed token names a user that does
	// not exist (for example, one deleted after the token was issued).
	ErrUnknownActor = errors.New("could not validate credentials")
)
