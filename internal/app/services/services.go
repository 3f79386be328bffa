package services

import (
	"authd/internal/app/deps"
	"authd/internal/core/services"
	getuserbysessiontoken "authd/internal/core/services/get_user_by_session_token"
	loginwithemail "authd/internal/core/services/log_in_with_email"
	resetpassword "authd/internal/core/services/reset_password"
	sendpasswordresettoken "authd/internal/core/services/send_password_reset_token"
	signupwithemail "authd/internal/core/services/sign_up_with_email"
	validatepasswordresettoken "authd/internal/core/services/validate_password_reset_token"
)

type Services struct {
	SignUpWithEmail            services.Service[signupwithemail.Input, signupwithemail.Result]
	LogInWithEmail             services.Service[loginwithemail.Input, loginwithemail.Result]
	SendPasswordResetToken     services.Service[sendpasswordresettoken.Input, sendpasswordresettoken.Result]
	ValidatePasswordResetToken services.Service[validatepasswordresettoken.Input, validatepasswordresettoken.Result]
	ResetPassword              services.Service[resetpassword.Input, resetpassword.Result]
	GetUserBySessionToken      services.Service[getuserbysessiontoken.Input, getuserbysessiontoken.Result]
}

func InitServices(deps *deps.Deps) *Services {
	s := &Services{}

	s.SignUpWithEmail = signupwithemail.New(
		deps.Logger,
		deps.UnitOfWork,
		deps.PasswordHasher,
		deps.Config.MinPasswordLength,
		deps.Now,
	)
	s.LogInWithEmail = loginwithemail.New(
		deps.Logger,
		deps.UserRepository,
		deps.SessionRepository,
		deps.PasswordHasher,
		deps.SessionTokenGenerator,
		deps.Now,
	)
	s.SendPasswordResetToken = sendpasswordresettoken.New(
		deps.Logger,
		deps.UserRepository,
		deps.PasswordResetTokenGenerator,
		deps.PasswordResetTokenHasher,
		deps.PasswordResetTokenSender,
		deps.Config.PasswordResetValidDuration,
		deps.Config.RevealAccountExistence,
		deps.Now,
	)
	s.ValidatePasswordResetToken = validatepasswordresettoken.New(
		deps.Logger,
		deps.UserRepository,
		deps.PasswordResetTokenHasher,
		deps.Now,
	)
	s.ResetPassword = resetpassword.New(
		deps.Logger,
		deps.UserRepository,
		deps.PasswordResetTokenHasher,
		deps.PasswordHasher,
		deps.PasswordChangedNotificationSender,
		deps.Config.MinPasswordLength,
		deps.Now,
	)
	s.GetUserBySessionToken = getuserbysessiontoken.New(
		deps.Logger,
		deps.SessionRepository,
	)

	return s
}
