package loginwithemail

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
	EMAIL         = c.Email("test@test.test")
	RAW_PASSWORD  = user.RawPassword("test-password")
	SESSION_TOKEN = "test-session-token"
)

var NOW time.Time = time.Now().UTC()

type testSuite struct {
	suite.Suite
	Logger                *logging.FakeLogger
	UserRepository        *user.FakeUserRepository
	SessionRepository     *user.FakeSessionRepository
	PasswordHasher        *user.FakePasswordHasher
	SessionTokenGenerator *user.FakeSessionTokenGenerator
	Service               services.Service[Input, Result]
}

func (suite *testSuite) SetupTest() {
	suite.Logger = logging.NewFakeLogger()
	suite.UserRepository = user.NewFakeUserRepository()
	suite.SessionRepository = user.NewFakeSessionRepository(suite.UserRepository)
	suite.PasswordHasher = user.NewFakePasswordHasher()
	suite.SessionTokenGenerator = user.NewFakeSessionTokenGenerator(SESSION_TOKEN)
	suite.Service = New(
		suite.Logger,
		suite.UserRepository,
		suite.SessionRepository,
		suite.PasswordHasher,
		suite.SessionTokenGenerator,
		func() time.Time { return NOW },
	)
}

func TestLogInWithEmailService(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (suite *testSuite) createUser() user.User {
	passwordHash, err := suite.PasswordHasher.HashPassword(RAW_PASSWORD)
	suite.Require().NoError(err)
	u, err := suite.UserRepository.Create(
		context.Background(),
		user.CreateUserInput{Email: EMAIL, PasswordHash: passwordHash, CreatedAt: NOW},
	)
	suite.Require().NoError(err)
	return u
}

func (suite *testSuite) TestSuccess() {
	createdUser := suite.createUser()

	result, err := suite.Service.Run(
		context.Background(),
		Input{Email: EMAIL, Password: RAW_PASSWORD},
	)

	assert := suite.Require()
	assert.Nil(err)
	assert.Equal(createdUser.ID, result.User.ID)
	assert.Equal(user.SessionToken(SESSION_TOKEN), result.Token)

	sessionUser, err := suite.SessionRepository.GetUserByToken(context.Background(), result.Token)
	assert.Nil(err)
	assert.Equal(createdUser.ID, sessionUser.ID)
}

func (suite *testSuite) TestInvalidPassword() {
	suite.createUser()

	_, err := suite.Service.Run(
		context.Background(),
		Input{Email: EMAIL, Password: user.RawPassword("invalid-password")},
	)

	suite.Require().True(errors.Is(err, user.ErrInvalidCredentials))
}

func (suite *testSuite) TestUnknownEmail() {
	suite.createUser()

	_, err := suite.Service.Run(
		context.Background(),
		Input{Email: c.Email("unknown@test.test"), Password: RAW_PASSWORD},
	)

	suite.Require().True(errors.Is(err, user.ErrInvalidCredentials))
}

// A wrong password and an unknown email must be impossible to tell apart
// from the caller's side.
func (suite *testSuite) TestInvalidPasswordAndUnknownEmailAreIndistinguishable() {
	suite.createUser()

	_, errWrongPassword := suite.Service.Run(
		context.Background(),
		Input{Email: EMAIL, Password: user.RawPassword("invalid-password")},
	)
	_, errUnknownEmail := suite.Service.Run(
		context.Background(),
		Input{Email: c.Email("unknown@test.test"), Password: RAW_PASSWORD},
	)

	assert := suite.Require()
	assert.True(errors.Is(errWrongPassword, user.ErrInvalidCredentials))
	assert.True(errors.Is(errUnknownEmail, user.ErrInvalidCredentials))
	assert.Equal(errWrongPassword.Error(), errUnknownEmail.Error())
	assert.Len(suite.SessionRepository.UserIdByToken, 0)
}
