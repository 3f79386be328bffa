package passwordhasher

import (
	"authd/internal/core/domain/user"

	"golang.org/x/crypto/bcrypt"
)

type Bcrypt struct {
	secret string
	cost   int
	// Limits how many bcrypt computations run at once so the deliberately
	// slow hash cannot starve concurrent request handling.
	slots chan struct{}
}

func NewBcrypt(secret string, cost int, maxConcurrency int) *Bcrypt {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Bcrypt{
		secret: secret,
		cost:   cost,
		slots:  make(chan struct{}, maxConcurrency),
	}
}

func (h *Bcrypt) HashPassword(password user.RawPassword) (hash user.PasswordHash, err error) {
	h.slots <- struct{}{}
	defer func() { <-h.slots }()

	bcryptHash, err := bcrypt.GenerateFromPassword([]byte(string(password)+h.secret), h.cost)
	if err != nil {
		return hash, err
	}
	return user.PasswordHash(bcryptHash), nil
}

func (h *Bcrypt) ValidatePassword(password user.RawPassword, hash user.PasswordHash) bool {
	h.slots <- struct{}{}
	defer func() { <-h.slots }()

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(string(password)+h.secret))
	return err == nil
}
