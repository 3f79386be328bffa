package user

import (
	"errors"
)

var (
	ErrEmailAlreadyExists        = errors.New("email already exists")
	ErrUserDoesNotExist          = errors.New("user does not exist")
	ErrInvalidCredentials        = errors.New("invalid credentials")
	ErrPasswordTooWeak           = errors.New("password does not satisfy the password policy")
	ErrInvalidPasswordResetToken = errors.New("invalid or expired password reset token")
	ErrSessionDoesNotExist       = errors.New("session does not exist")
)
