package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrEmailTaken         = errors.New("email_taken")
	ErrWeakPassword       = errors.New("weak_password")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidSession     = errors.New("invalid_session")
	ErrResetNotFound      = errors.New("reset_token_not_found")
	ErrResetExpired       = errors.New("reset_token_expired")
)
