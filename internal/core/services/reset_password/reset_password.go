package resetpassword

import (
	"context"
	"errors"
	"time"

	e "authd/internal/core/domain/errors"
	"authd/internal/core/domain/logging"
	"authd/internal/core/domain/user"
	"authd/internal/core/services"
)

type Input struct {
	Token       user.PasswordResetToken
	NewPassword user.RawPassword
}

type Result struct {
	User user.User
}

type service struct {
	log                logging.Logger
	userRepository     user.UserRepository
	tokenHasher        user.PasswordResetTokenHasher
	passwordHasher     user.PasswordHasher
	confirmationSender user.PasswordChangedNotificationSender
	minPasswordLength  int
	now                func() time.Time
}

func New(
	log logging.Logger,
	userRepository user.UserRepository,
	tokenHasher user.PasswordResetTokenHasher,
	passwordHasher user.PasswordHasher,
	confirmationSender user.PasswordChangedNotificationSender,
	minPasswordLength int,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if userRepository == nil {
		panic(e.NewNilArgumentError("userRepository"))
	}
	if tokenHasher == nil {
		panic(e.NewNilArgumentError("tokenHasher"))
	}
	if passwordHasher == nil {
		panic(e.NewNilArgumentError("passwordHasher"))
	}
	if confirmationSender == nil {
		panic(e.NewNilArgumentError("confirmationSender"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:                log,
		userRepository:     userRepository,
		tokenHasher:        tokenHasher,
		passwordHasher:     passwordHasher,
		confirmationSender: confirmationSender,
		minPasswordLength:  minPasswordLength,
		now:                now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	if len(input.NewPassword) < s.minPasswordLength {
		return result, user.ErrPasswordTooWeak
	}

	tokenHash := s.tokenHasher.HashPasswordResetToken(input.Token)
	_, err = s.userRepository.GetByValidResetToken(ctx, tokenHash, s.now())
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if errors.Is(err, user.ErrInvalidPasswordResetToken) {
		return result, user.ErrInvalidPasswordResetToken
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not look up password reset token.",
			logging.Entry("err", err),
		)
		return result, err
	}

	newPasswordHash, err := s.passwordHasher.HashPassword(input.NewPassword)
	if err != nil {
		s.log.Error(ctx, "Could not hash new password.", logging.Entry("err", err))
		return result, err
	}

	// The update re-checks the token against current state, so a token
	// consumed or superseded since the lookup above fails here, and the
	// password swap and token clearing land in one atomic write.
	updatedUser, err := s.userRepository.ResetPassword(ctx, user.ResetPasswordInput{
		TokenHash:       tokenHash,
		NewPasswordHash: newPasswordHash,
		At:              s.now(),
	})
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if errors.Is(err, user.ErrInvalidPasswordResetToken) {
		return result, user.ErrInvalidPasswordResetToken
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not update user password.",
			logging.Entry("err", err),
		)
		return result, err
	}

	// The password change is already durable; the confirmation email is
	// advisory and its failure is only logged.
	if err := s.confirmationSender.SendPasswordChangedNotification(ctx, updatedUser); err != nil &&
		!errors.Is(err, context.Canceled) {
		s.log.Error(
			ctx,
			"Could not send password changed notification.",
			logging.Entry("userId", updatedUser.ID),
			logging.Entry("err", err),
		)
	}

	s.log.Info(
		ctx,
		"New password has been successfully set.",
		logging.Entry("userId", updatedUser.ID),
	)
	return Result{User: updatedUser}, nil
}
