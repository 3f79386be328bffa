package resetpassword

import (
	"context"
	"errors"
	"testing"
	"time"

	c "authd/internal/core/domain/common"
	"authd/internal/core/domain/logging"
	"authd/internal/core/domain/user"
	"authd/internal/core/services"

	"github.com/stretchr/testify/suite"
)

const (
	EMAIL               = c.Email("test@test.test")
	OLD_PASSWORD        = user.RawPassword("old-password")
	NEW_PASSWORD        = user.RawPassword("new-password")
	RESET_TOKEN         = user.PasswordResetToken("test-reset-token")
	MIN_PASSWORD_LENGTH = 6
)

var NOW time.Time = time.Now().UTC()

type testSuite struct {
	suite.Suite
	Logger             *logging.FakeLogger
	UserRepository     *user.FakeUserRepository
	TokenHasher        *user.FakePasswordResetTokenHasher
	PasswordHasher     *user.FakePasswordHasher
	ConfirmationSender *user.FakePasswordChangedNotificationSender
	Service            services.Service[Input, Result]
}

func (suite *testSuite) SetupTest() {
	suite.Logger = logging.NewFakeLogger()
	suite.UserRepository = user.NewFakeUserRepository()
	suite.TokenHasher = user.NewFakePasswordResetTokenHasher()
	suite.PasswordHasher = user.NewFakePasswordHasher()
	suite.ConfirmationSender = user.NewFakePasswordChangedNotificationSender()
	suite.Service = New(
		suite.Logger,
		suite.UserRepository,
		suite.TokenHasher,
		suite.PasswordHasher,
		suite.ConfirmationSender,
		MIN_PASSWORD_LENGTH,
		func() time.Time { return NOW },
	)
}

func TestResetPasswordService(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (suite *testSuite) createUserWithToken(token user.PasswordResetToken, expiresAt time.Time) user.User {
	passwordHash, err := suite.PasswordHasher.HashPassword(OLD_PASSWORD)
	suite.Require().NoError(err)
	u, err := suite.UserRepository.Create(
		context.Background(),
		user.CreateUserInput{Email: EMAIL, PasswordHash: passwordHash, CreatedAt: NOW},
	)
	suite.Require().NoError(err)
	err = suite.UserRepository.SetPasswordResetToken(context.Background(), user.SetPasswordResetTokenInput{
		UserID:    u.ID,
		TokenHash: suite.TokenHasher.HashPasswordResetToken(token),
		ExpiresAt: expiresAt,
	})
	suite.Require().NoError(err)
	return u
}

func (suite *testSuite) TestSuccess() {
	createdUser := suite.createUserWithToken(RESET_TOKEN, NOW.Add(time.Minute))

	result, err := suite.Service.Run(
		context.Background(),
		Input{Token: RESET_TOKEN, NewPassword: NEW_PASSWORD},
	)

	assert := suite.Require()
	assert.Nil(err)
	assert.Equal(createdUser.ID, result.User.ID)

	storedUser, err := suite.UserRepository.GetByID(context.Background(), createdUser.ID)
	assert.Nil(err)
	assert.True(suite.PasswordHasher.ValidatePassword(NEW_PASSWORD, storedUser.PasswordHash))
	assert.False(suite.PasswordHasher.ValidatePassword(OLD_PASSWORD, storedUser.PasswordHash))
	assert.False(storedUser.PasswordResetTokenHash.IsPresent)
	assert.False(storedUser.PasswordResetExpiresAt.IsPresent)

	assert.Equal(1, suite.ConfirmationSender.SentCount())
	assert.Equal(createdUser.ID, suite.ConfirmationSender.SentTo[0].ID)
}

func (suite *testSuite) TestTokenIsSingleUse() {
	suite.createUserWithToken(RESET_TOKEN, NOW.Add(time.Minute))

	_, err := suite.Service.Run(
		context.Background(),
		Input{Token: RESET_TOKEN, NewPassword: NEW_PASSWORD},
	)
	suite.Require().Nil(err)

	_, err = suite.Service.Run(
		context.Background(),
		Input{Token: RESET_TOKEN, NewPassword: user.RawPassword("another-password")},
	)
	suite.Require().True(errors.Is(err, user.ErrInvalidPasswordResetToken))
}

func (suite *testSuite) TestExpiredToken() {
	createdUser := suite.createUserWithToken(RESET_TOKEN, NOW.Add(-time.Second))

	_, err := suite.Service.Run(
		context.Background(),
		Input{Token: RESET_TOKEN, NewPassword: NEW_PASSWORD},
	)

	assert := suite.Require()
	assert.True(errors.Is(err, user.ErrInvalidPasswordResetToken))

	storedUser, err := suite.UserRepository.GetByID(context.Background(), createdUser.ID)
	assert.Nil(err)
	assert.True(suite.PasswordHasher.ValidatePassword(OLD_PASSWORD, storedUser.PasswordHash))
}

func (suite *testSuite) TestSupersededTokenIsRejected() {
	createdUser := suite.createUserWithToken(RESET_TOKEN, NOW.Add(time.Minute))

	err := suite.UserRepository.SetPasswordResetToken(context.Background(), user.SetPasswordResetTokenInput{
		UserID:    createdUser.ID,
		TokenHash: suite.TokenHasher.HashPasswordResetToken("second-reset-token"),
		ExpiresAt: NOW.Add(time.Minute),
	})
	suite.Require().NoError(err)

	_, err = suite.Service.Run(
		context.Background(),
		Input{Token: RESET_TOKEN, NewPassword: NEW_PASSWORD},
	)
	suite.Require().True(errors.Is(err, user.ErrInvalidPasswordResetToken))

	_, err = suite.Service.Run(
		context.Background(),
		Input{Token: "second-reset-token", NewPassword: NEW_PASSWORD},
	)
	suite.Require().Nil(err)
}

func (suite *testSuite) TestPasswordTooWeak() {
	suite.createUserWithToken(RESET_TOKEN, NOW.Add(time.Minute))

	_, err := suite.Service.Run(
		context.Background(),
		Input{Token: RESET_TOKEN, NewPassword: user.RawPassword("12345")},
	)

	assert := suite.Require()
	assert.True(errors.Is(err, user.ErrPasswordTooWeak))

	// The weak password must not consume the token.
	_, err = suite.Service.Run(
		context.Background(),
		Input{Token: RESET_TOKEN, NewPassword: NEW_PASSWORD},
	)
	assert.Nil(err)
}

func (suite *testSuite) TestConfirmationFailureDoesNotFailReset() {
	createdUser := suite.createUserWithToken(RESET_TOKEN, NOW.Add(time.Minute))
	suite.ConfirmationSender.ReturnError = true

	_, err := suite.Service.Run(
		context.Background(),
		Input{Token: RESET_TOKEN, NewPassword: NEW_PASSWORD},
	)

	assert := suite.Require()
	assert.Nil(err)

	storedUser, err := suite.UserRepository.GetByID(context.Background(), createdUser.ID)
	assert.Nil(err)
	assert.True(suite.PasswordHasher.ValidatePassword(NEW_PASSWORD, storedUser.PasswordHash))
}
