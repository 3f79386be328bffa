package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"authd/internal/app/deps"
	"authd/internal/app/services"
	"authd/internal/config"
	"authd/internal/core/domain/logging"
	uow "authd/internal/core/domain/unit_of_work"
	"authd/internal/core/domain/user"
	getuserbysessiontoken "authd/internal/core/services/get_user_by_session_token"
	loginwithemail "authd/internal/core/services/log_in_with_email"
	resetpassword "authd/internal/core/services/reset_password"
	sendpasswordresettoken "authd/internal/core/services/send_password_reset_token"
	signupwithemail "authd/internal/core/services/sign_up_with_email"
	validatepasswordresettoken "authd/internal/core/services/validate_password_reset_token"
	resettoken "authd/internal/implementations/reset_token"
	"authd/internal/implementations/session"

	"github.com/stretchr/testify/require"
)

const TEST_TOKEN_HEADER = "x-test-password-reset-token"

func createTestServer() *http.Server {
	log := logging.NewFakeLogger()
	unitOfWork := uow.NewFakeUnitOfWork()
	userRepo := unitOfWork.Context.UserRepository
	sessionRepo := user.NewFakeSessionRepository(userRepo)
	passwordHasher := user.NewFakePasswordHasher()
	tokenGenerator := resettoken.NewGenerator()
	tokenHasher := resettoken.NewSHA256Hasher()
	tokenSender := user.NewFakePasswordResetTokenSender()
	confirmationSender := user.NewFakePasswordChangedNotificationSender()
	now := func() time.Time { return time.Now().UTC() }

	s := &services.Services{
		SignUpWithEmail: signupwithemail.New(log, unitOfWork, passwordHasher, 6, now),
		LogInWithEmail: loginwithemail.New(
			log,
			userRepo,
			sessionRepo,
			passwordHasher,
			session.NewUUID(),
			now,
		),
		SendPasswordResetToken: sendpasswordresettoken.New(
			log,
			userRepo,
			tokenGenerator,
			tokenHasher,
			tokenSender,
			15*time.Minute,
			false,
			now,
		),
		ValidatePasswordResetToken: validatepasswordresettoken.New(log, userRepo, tokenHasher, now),
		ResetPassword: resetpassword.New(
			log,
			userRepo,
			tokenHasher,
			passwordHasher,
			confirmationSender,
			6,
			now,
		),
		GetUserBySessionToken: getuserbysessiontoken.New(log, sessionRepo),
	}

	d := &deps.Deps{
		Config: &config.Config{
			IsTestMode:     true,
			Port:           9090,
			AllowedOrigins: []string{"*"},
		},
	}
	return InitHttpServer(d, s)
}

func postJSON(t *testing.T, handler http.Handler, url string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	content, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(content))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, handler http.Handler, url string, authToken string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, handler http.Handler, email string, password string) *httptest.ResponseRecorder {
	t.Helper()
	return postJSON(t, handler, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

func TestPasswordResetScenario(t *testing.T) {
	handler := createTestServer().Handler

	// Register and check that only the right password logs in.
	rec := postJSON(t, handler, "/auth/register", map[string]string{
		"email":    "a@b.com",
		"password": "password1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = login(t, handler, "a@b.com", "wrong-password")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = login(t, handler, "a@b.com", "password1")
	require.Equal(t, http.StatusOK, rec.Code)
	loginResult := struct {
		Token string `json:"token"`
		User  struct {
			ID    int64  `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loginResult))
	require.NotEmpty(t, loginResult.Token)
	require.Equal(t, "a@b.com", loginResult.User.Email)

	rec = get(t, handler, "/auth/me", loginResult.Token)
	require.Equal(t, http.StatusOK, rec.Code)

	// Request a reset token; in test mode it comes back in a header.
	rec = postJSON(t, handler, "/auth/forgot-password", map[string]string{"email": "a@b.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	resetToken := rec.Header().Get(TEST_TOKEN_HEADER)
	require.NotEmpty(t, resetToken)

	rec = get(t, handler, "/auth/reset-password/"+resetToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{}`, rec.Body.String())

	rec = postJSON(t, handler, "/auth/reset-password/"+resetToken, map[string]string{
		"password": "password2",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// The old password is dead, the new one works, the token is consumed.
	rec = login(t, handler, "a@b.com", "password1")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = login(t, handler, "a@b.com", "password2")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, handler, "/auth/reset-password/"+resetToken, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, handler, "/auth/reset-password/"+resetToken, map[string]string{
		"password": "password3",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

// Responses for existing and unknown emails must be identical, except for
// the test-mode header.
func TestForgotPasswordDoesNotRevealAccountExistence(t *testing.T) {
	handler := createTestServer().Handler

	rec := postJSON(t, handler, "/auth/register", map[string]string{
		"email":    "a@b.com",
		"password": "password1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	recKnown := postJSON(t, handler, "/auth/forgot-password", map[string]string{"email": "a@b.com"})
	recUnknown := postJSON(t, handler, "/auth/forgot-password", map[string]string{"email": "nobody@b.com"})

	require.Equal(t, http.StatusOK, recKnown.Code)
	require.Equal(t, http.StatusOK, recUnknown.Code)
	require.Equal(t, recKnown.Body.String(), recUnknown.Body.String())

	require.NotEmpty(t, recKnown.Header().Get(TEST_TOKEN_HEADER))
	require.Empty(t, recUnknown.Header().Get(TEST_TOKEN_HEADER))
}

func TestDuplicateRegistrationRendersGenericError(t *testing.T) {
	handler := createTestServer().Handler

	rec := postJSON(t, handler, "/auth/register", map[string]string{
		"email":    "a@b.com",
		"password": "password1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, handler, "/auth/register", map[string]string{
		"email":    "a@b.com",
		"password": "password2",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error": "invalid request data"}`, rec.Body.String())
}

// The pre-rename paths stay routed to the same handlers.
func TestLegacyAliasRoutes(t *testing.T) {
	handler := createTestServer().Handler

	rec := postJSON(t, handler, "/auth/register", map[string]string{
		"email":    "a@b.com",
		"password": "password1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, handler, "/auth/forgot", map[string]string{"email": "a@b.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	resetToken := rec.Header().Get(TEST_TOKEN_HEADER)
	require.NotEmpty(t, resetToken)

	rec = get(t, handler, "/auth/reset/"+resetToken, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, handler, "/auth/reset/"+resetToken, map[string]string{
		"password": "password2",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = login(t, handler, "a@b.com", "password2")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMeRequiresValidToken(t *testing.T) {
	handler := createTestServer().Handler

	rec := get(t, handler, "/auth/me", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = get(t, handler, "/auth/me", "unknown-token")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
