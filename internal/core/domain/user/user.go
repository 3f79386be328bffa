package user

import (
	"fmt"
	"time"

	c "authd/internal/core/domain/common"
	e "authd/internal/core/domain/errors"
)

type ID int64

type PasswordHash string

func (p PasswordHash) String() string {
	return "***"
}

type RawPassword string

func (p RawPassword) String() string {
	return "***"
}

type SessionToken string

type User struct {
	ID           ID
	Email        c.Email
	PasswordHash PasswordHash
	CreatedAt    time.Time

	// Both fields are set by a reset request and cleared together when the
	// token is consumed or superseded.
	PasswordResetTokenHash c.Optional[PasswordResetTokenHash]
	PasswordResetExpiresAt c.Optional[time.Time]
}

func (u *User) Validate() error {
	if u.Email == "" {
		return e.NewInvalidStateError(fmt.Sprintf("email is not set for user %d", u.ID))
	}
	if u.PasswordHash == "" {
		return e.NewInvalidStateError(fmt.Sprintf("password hash is not set for user %d", u.ID))
	}
	if u.PasswordResetTokenHash.IsPresent != u.PasswordResetExpiresAt.IsPresent {
		return e.NewInvalidStateError(
			fmt.Sprintf("password reset token hash and expiry are out of sync for user %d", u.ID),
		)
	}
	return nil
}

func (u *User) HasOutstandingResetToken(now time.Time) bool {
	return u.PasswordResetTokenHash.IsPresent &&
		u.PasswordResetExpiresAt.IsPresent &&
		u.PasswordResetExpiresAt.Value.After(now)
}
