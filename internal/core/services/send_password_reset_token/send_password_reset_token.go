package sendpasswordresettoken

import (
	"context"
	"errors"
	"time"

	c "authd/internal/core/domain/common"
	e "authd/internal/core/domain/errors"
	"authd/internal/core/domain/logging"
	"authd/internal/core/domain/user"
	"authd/internal/core/services"
)

type Input struct {
	Email c.Email
}

type Result struct {
	// Token is set only when a token was actually issued. It is exposed to
	// the transport layer for the test-mode header and must never reach a
	// production response body.
	Token user.PasswordResetToken
}

type service struct {
	log                    logging.Logger
	userRepository         user.UserRepository
	tokenGenerator         user.PasswordResetTokenGenerator
	tokenHasher            user.PasswordResetTokenHasher
	tokenSender            user.PasswordResetTokenSender
	tokenValidDuration     time.Duration
	revealAccountExistence bool
	now                    func() time.Time
}

func New(
	log logging.Logger,
	userRepository user.UserRepository,
	tokenGenerator user.PasswordResetTokenGenerator,
	tokenHasher user.PasswordResetTokenHasher,
	tokenSender user.PasswordResetTokenSender,
	tokenValidDuration time.Duration,
	revealAccountExistence bool,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if userRepository == nil {
		panic(e.NewNilArgumentError("userRepository"))
	}
	if tokenGenerator == nil {
		panic(e.NewNilArgumentError("tokenGenerator"))
	}
	if tokenHasher == nil {
		panic(e.NewNilArgumentError("tokenHasher"))
	}
	if tokenSender == nil {
		panic(e.NewNilArgumentError("tokenSender"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:                    log,
		userRepository:         userRepository,
		tokenGenerator:         tokenGenerator,
		tokenHasher:            tokenHasher,
		tokenSender:            tokenSender,
		tokenValidDuration:     tokenValidDuration,
		revealAccountExistence: revealAccountExistence,
		now:                    now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	u, err := s.userRepository.GetByEmail(ctx, input.Email)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if errors.Is(err, user.ErrUserDoesNotExist) {
		if s.revealAccountExistence {
			return result, user.ErrUserDoesNotExist
		}
		// The caller must not be able to tell this apart from the success
		// case, so the miss is only logged.
		s.log.Info(
			ctx,
			"Password reset requested for unknown email.",
			logging.Entry("email", input.Email),
		)
		return result, nil
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not get user for password reset request.",
			logging.Entry("email", input.Email),
			logging.Entry("err", err),
		)
		return result, err
	}

	token := s.tokenGenerator.GeneratePasswordResetToken()
	err = s.userRepository.SetPasswordResetToken(ctx, user.SetPasswordResetTokenInput{
		UserID:    u.ID,
		TokenHash: s.tokenHasher.HashPasswordResetToken(token),
		ExpiresAt: s.now().Add(s.tokenValidDuration),
	})
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not store password reset token.",
			logging.Entry("userId", u.ID),
			logging.Entry("err", err),
		)
		return result, err
	}

	// The token is persisted, so delivery failure must not surface: the user
	// may simply retry the request.
	if err := s.tokenSender.SendPasswordResetToken(ctx, u, token); err != nil {
		if errors.Is(err, context.Canceled) {
			return result, err
		}
		s.log.Error(
			ctx,
			"Could not send password reset token.",
			logging.Entry("userId", u.ID),
			logging.Entry("err", err),
		)
	}

	s.log.Info(ctx, "Password reset token has been issued.", logging.Entry("userId", u.ID))
	return Result{Token: token}, nil
}
