package service

import "errors"

var (
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoCredits          = errors.New("no credits remaining")
	ErrNotFound           = errors.New("not found")
)
