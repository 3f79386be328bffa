package user

import (
	"context"
	"time"

	c "authd/internal/core/domain/common"
)

type CreateUserInput struct {
	Email        c.Email
	PasswordHash PasswordHash
	CreatedAt    time.Time
}

type SetPasswordResetTokenInput struct {
	UserID    ID
	TokenHash PasswordResetTokenHash
	ExpiresAt time.Time
}

type ResetPasswordInput struct {
	TokenHash       PasswordResetTokenHash
	NewPasswordHash PasswordHash
	At              time.Time
}

type UserRepository interface {
	// Create returns ErrEmailAlreadyExists if the normalized email is taken.
	Create(ctx context.Context, input CreateUserInput) (User, error)
	GetByID(ctx context.Context, id ID) (User, error)
	GetByEmail(ctx context.Context, email c.Email) (User, error)

	// SetPasswordResetToken stores the token hash and expiry on the user
	// record, overwriting any previously outstanding token.
	SetPasswordResetToken(ctx context.Context, input SetPasswordResetTokenInput) error

	// GetByValidResetToken matches the token hash and filters out expired
	// tokens in the same lookup, so "found" always implies "still valid".
	// Returns ErrInvalidPasswordResetToken when nothing matches.
	GetByValidResetToken(ctx context.Context, tokenHash PasswordResetTokenHash, now time.Time) (User, error)

	// ResetPassword atomically replaces the password hash and clears the
	// reset token fields, but only if the token hash still matches and has
	// not expired at input.At. Returns ErrInvalidPasswordResetToken when the
	// condition no longer holds.
	ResetPassword(ctx context.Context, input ResetPasswordInput) (User, error)
}

type CreateSessionInput struct {
	UserID    ID
	Token     SessionToken
	CreatedAt time.Time
}

type SessionRepository interface {
	Create(ctx context.Context, input CreateSessionInput) error
	GetUserByToken(ctx context.Context, token SessionToken) (User, error)
}

type SessionTokenGenerator interface {
	GenerateSessionToken() SessionToken
}
