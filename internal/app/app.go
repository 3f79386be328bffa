package app

import (
	"fmt"
	"net/http"

	"authd/internal/app/deps"
	"authd/internal/app/services"
	loginwithemail "authd/internal/http/handlers/auth/log_in_with_email"
	"authd/internal/http/handlers/auth/me"
	resetpassword "authd/internal/http/handlers/auth/reset_password"
	sendpasswordresettoken "authd/internal/http/handlers/auth/send_password_reset_token"
	signupwithemail "authd/internal/http/handlers/auth/sign_up_with_email"
	validatepasswordresettoken "authd/internal/http/handlers/auth/validate_password_reset_token"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func InitHttpServer(deps *deps.Deps, s *services.Services) *http.Server {
	isTestMode := deps.Config.IsTestMode

	authRouter := chi.NewRouter()
	authRouter.Method(http.MethodPost, "/register", signupwithemail.New(s.SignUpWithEmail))
	authRouter.Method(http.MethodPost, "/login", loginwithemail.New(s.LogInWithEmail))
	authRouter.Method(
		http.MethodPost,
		"/forgot-password",
		sendpasswordresettoken.New(s.SendPasswordResetToken, isTestMode),
	)
	authRouter.Method(
		http.MethodGet,
		"/reset-password/{token}",
		validatepasswordresettoken.New(s.ValidatePasswordResetToken),
	)
	authRouter.Method(http.MethodPost, "/reset-password/{token}", resetpassword.New(s.ResetPassword))
	authRouter.Method(http.MethodGet, "/me", me.New(s.GetUserBySessionToken))

	// Aliases kept for clients that predate the current paths.
	authRouter.Method(
		http.MethodPost,
		"/forgot",
		sendpasswordresettoken.New(s.SendPasswordResetToken, isTestMode),
	)
	authRouter.Method(
		http.MethodGet,
		"/reset/{token}",
		validatepasswordresettoken.New(s.ValidatePasswordResetToken),
	)
	authRouter.Method(http.MethodPost, "/reset/{token}", resetpassword.New(s.ResetPassword))

	router := chi.NewRouter()
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))
	router.Mount("/auth", authRouter)

	address := fmt.Sprintf("0.0.0.0:%d", deps.Config.Port)

	return &http.Server{
		Handler: router,
		Addr:    address,
	}
}
