package user

import "context"

// PasswordResetToken is the high-entropy plaintext secret delivered to the
// user out of band. Only its hash is ever persisted.
type PasswordResetToken string

func (t PasswordResetToken) String() string {
	return "***"
}

// PasswordResetTokenHash is a fast deterministic one-way hash of the token,
// used for equality lookup. The token's entropy, not the hash's cost, is
// what protects it.
type PasswordResetTokenHash string

type PasswordResetTokenGenerator interface {
	GeneratePasswordResetToken() PasswordResetToken
}

type PasswordResetTokenHasher interface {
	HashPasswordResetToken(token PasswordResetToken) PasswordResetTokenHash
}

type PasswordResetTokenSender interface {
	SendPasswordResetToken(ctx context.Context, user User, token PasswordResetToken) error
}

type PasswordChangedNotificationSender interface {
	SendPasswordChangedNotification(ctx context.Context, user User) error
}
