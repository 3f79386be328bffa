package resettoken

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"authd/internal/core/domain/user"
)

const tokenByteLength = 32

// Generator produces password reset tokens from crypto/rand. 32 random
// bytes give 256 bits of entropy, which is what makes the fast sha256
// lookup hash below safe.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) GeneratePasswordResetToken() user.PasswordResetToken {
	b := make([]byte, tokenByteLength)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms.
		panic(err)
	}
	return user.PasswordResetToken(hex.EncodeToString(b))
}

// SHA256Hasher is the deterministic one-way hash used to look tokens up
// without ever persisting the plaintext.
type SHA256Hasher struct{}

func NewSHA256Hasher() *SHA256Hasher {
	return &SHA256Hasher{}
}

func (h *SHA256Hasher) HashPasswordResetToken(token user.PasswordResetToken) user.PasswordResetTokenHash {
	sum := sha256.Sum256([]byte(token))
	return user.PasswordResetTokenHash(hex.EncodeToString(sum[:]))
}
