package user

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
	ErrEmailTaken   = errors.New("email belongs to another user")
)
