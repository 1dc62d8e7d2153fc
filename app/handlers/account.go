package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/citypress/account-service/app/dto"
	"github.com/citypress/account-service/app/errors"
	"github.com/citypress/account-service/app/logger"
	"github.com/citypress/account-service/app/metrics"
	authmw "github.com/citypress/account-service/app/middleware"
	"github.com/citypress/account-service/app/services"
	"github.com/citypress/account-service/app/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

type application struct {
	config               config
	store                store.Storage
	accountService       *services.AccountService
	verificationService  *services.VerificationService
	passwordResetService *services.PasswordResetService
	adminService         *services.AdminService
	redisClient          *redis.Client
	db                   interface {
		PingContext(ctx context.Context) error
		Close() error
	}
	rabbitConn interface {
		IsClosed() bool
		Close() error
	}
	rabbitCh interface {
		IsClosed() bool
		Close() error
	}
	closeRabbit func()
}

type dbConfig struct {
	addr         string
	maxOpenConns int
	maxIdleConns int
	maxIdleTime  string
}

type config struct {
	addr string
	db   dbConfig
}

// maxProfileImageBytes caps the decoded size of an uploaded profile image.
const maxProfileImageBytes = 2 << 20

func (app *application) mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(authmw.RequestIDTracing()) // Propagate request ID to logger and context
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	// Metrics middleware - record HTTP metrics
	r.Use(authmw.Metrics())

	// Security headers - must be early to protect all responses
	r.Use(authmw.SecurityHeaders())

	// CORS middleware - must be early in the chain to handle preflight requests
	r.Use(authmw.CORS())

	// Request body size limit - registration may carry a profile image
	r.Use(authmw.BodyLimitFromEnv())

	//Set a timeout value on the request context (ctx), that will signal
	//through ctx.Done() that the request has time out and further
	//processing should be stopped.
	r.Use(middleware.Timeout(60 * time.Second))

	loginLimit := authmw.RouteLimit{Name: "login", Capacity: 5, Window: time.Minute}
	registerLimit := authmw.RouteLimit{Name: "register", Capacity: 10, Window: 5 * time.Minute}
	logoutLimit := authmw.RouteLimit{Name: "logout", Capacity: 30, Window: 5 * time.Minute}
	verifyEmailLimit := authmw.RouteLimit{Name: "verifyEmail", Capacity: 5, Window: time.Minute}
	sessionLimit := authmw.RouteLimit{Name: "session", Capacity: 120, Window: time.Minute}
	healthCheckLimit := authmw.RouteLimit{Name: "healthCheck", Capacity: 20, Window: time.Minute}
	r.Route("/account/v1", func(r chi.Router) {
		r.With(authmw.RateLimit(app.redisClient, healthCheckLimit, authmw.PrincipalIP())).Get("/health", http.HandlerFunc(app.healthCheckHandler))

		// Prometheus metrics endpoint - PROTECTED (IP whitelist or API key)
		r.With(authmw.MetricsAuth()).Get("/metrics", metrics.MetricsHandler().ServeHTTP)

		// Account lifecycle endpoints
		r.With(authmw.RateLimit(app.redisClient, registerLimit, authmw.PrincipalIP())).Post("/register", http.HandlerFunc(app.registerHandler))
		r.With(authmw.RateLimit(app.redisClient, loginLimit, authmw.PrincipalIP())).Post("/login", http.HandlerFunc(app.loginHandler))
		r.With(authmw.RateLimit(app.redisClient, logoutLimit, authmw.PrincipalIP())).Post("/logout", http.HandlerFunc(app.logoutHandler))
		// The verification link in the mail is a GET, so the token rides in the query string.
		r.With(authmw.RateLimit(app.redisClient, verifyEmailLimit, authmw.PrincipalIP())).Get("/verify-email", http.HandlerFunc(app.verifyEmailHandler))
		forgotPasswordLimit := authmw.RouteLimit{Name: "forgotPassword", Capacity: 3, Window: time.Hour}
		r.With(authmw.RateLimit(app.redisClient, forgotPasswordLimit, authmw.PrincipalIP())).Post("/forgot-password", http.HandlerFunc(app.forgotPasswordHandler))
		passwordResetLimit := authmw.RouteLimit{Name: "passwordReset", Capacity: 5, Window: time.Minute}
		r.With(authmw.RateLimit(app.redisClient, passwordResetLimit, authmw.PrincipalIP())).Post("/reset-password", http.HandlerFunc(app.resetPasswordHandler))

		// Session-protected endpoints
		r.Group(func(pr chi.Router) {
			pr.Use(authmw.SessionAuth())
			pr.Use(authmw.RateLimit(app.redisClient, sessionLimit, authmw.PrincipalUserOrIP()))
			pr.Get("/me", http.HandlerFunc(app.meHandler))

			// Admin console
			pr.Route("/admin/users", func(ar chi.Router) {
				ar.Use(authmw.RequireAdmin())
				ar.Get("/", http.HandlerFunc(app.adminListUsersHandler))
				ar.Post("/", http.HandlerFunc(app.adminCreateUserHandler))
				ar.Get("/{id}", http.HandlerFunc(app.adminGetUserHandler))
				ar.Put("/{id}", http.HandlerFunc(app.adminUpdateUserHandler))
				ar.Delete("/{id}", http.HandlerFunc(app.adminDeleteUserHandler))
			})
		})

	})
	return r
}

func (app *application) run(mux http.Handler) error {
	srv := http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: 30 * time.Second,
		ReadTimeout:  10 * time.Second,
		IdleTimeout:  time.Minute,
	}
	logger.Logger.Info().Str("addr", app.config.addr).Msg("Starting server")
	return srv.ListenAndServe()
}

// runWithGracefulShutdown starts the server with graceful shutdown support.
// It handles SIGTERM and SIGINT signals, allowing in-flight requests to complete
// before shutting down connections.
func (app *application) runWithGracefulShutdown(
	mux http.Handler,
	db interface{ Close() error },
	redisClient interface{ Close() error },
) error {
	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: 30 * time.Second,
		ReadTimeout:  10 * time.Second,
		IdleTimeout:  time.Minute,
	}

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.Logger.Info().Str("addr", app.config.addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	// Wait for interrupt signal or server error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.Logger.Info().Str("signal", sig.String()).Msg("Received signal, starting graceful shutdown")
	}

	// Graceful shutdown with timeout
	shutdownTimeout := 30 * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Shutdown server (stops accepting new connections, waits for in-flight requests)
	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("Server forced to shutdown")
		return err
	}

	logger.Logger.Info().Msg("Server gracefully stopped")

	// Close connections in order
	logger.Logger.Info().Msg("Closing database connection")
	if err := db.Close(); err != nil {
		logger.Logger.Error().Err(err).Msg("Error closing database")
	}

	logger.Logger.Info().Msg("Closing Redis connection")
	if err := redisClient.Close(); err != nil {
		logger.Logger.Error().Err(err).Msg("Error closing Redis")
	}

	if app.closeRabbit != nil {
		logger.Logger.Info().Msg("Closing RabbitMQ connection")
		app.closeRabbit()
	}

	logger.Logger.Info().Msg("Graceful shutdown completed")
	return nil
}

// readProfileImage pulls the optional profile image out of a multipart form.
// Returns nil when the field is absent.
func readProfileImage(r *http.Request) ([]byte, *errors.AppError) {
	file, _, err := r.FormFile("profile_image")
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, errors.NewInvalidInput("invalid profile_image upload")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxProfileImageBytes+1))
	if err != nil {
		return nil, errors.NewInvalidInput("could not read profile_image upload")
	}
	if len(data) > maxProfileImageBytes {
		return nil, errors.NewInvalidInput("profile_image exceeds maximum size")
	}
	return data, nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// registerHandler handles account registration. Accepts either a JSON body or
// a multipart form (the latter may carry a profile_image file part).
func (app *application) registerHandler(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	var profileImage []byte

	// 1. Parse body (JSON or multipart form)
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxProfileImageBytes); err != nil {
			writeErrorResponse(w, errors.NewInvalidInput("invalid multipart form"))
			return
		}
		req.Email = r.FormValue("email")
		req.Password = r.FormValue("password")
		req.Name = r.FormValue("name")
		req.Phone = r.FormValue("phone")

		img, appErr := readProfileImage(r)
		if appErr != nil {
			writeErrorResponse(w, appErr)
			return
		}
		profileImage = img
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErrorResponse(w, errors.NewInvalidInput("invalid request body"))
			return
		}
	}

	// 2. Sanitize inputs (before validation)
	req.Email = sanitizeEmail(req.Email, 255)
	req.Name = sanitizeInput(req.Name, 50, false)
	req.Phone = sanitizeInput(req.Phone, 15, false)
	// Password should NOT be sanitized (preserve special characters for password strength)
	// Only trim and limit length
	req.Password = sanitizeInput(req.Password, 128, true)

	// 3. Validate DTO
	if err := validateRequest(&req); err != nil {
		writeErrorResponse(w, err)
		return
	}

	// 4. Call service (already validated and sanitized)
	user, appErr := app.accountService.Register(r.Context(), req, profileImage)
	if appErr != nil {
		writeErrorResponse(w, appErr)
		return
	}

	resp := dto.RegisterResponse{
		Message: "registration successful, please check your email to verify your account",
		User:    dto.NewUserResponse(user),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

// setSessionCookie writes (or clears, with maxAge < 0) the session cookie.
// Secure should be true in production (when served over HTTPS).
// SameSite=StrictMode helps protect against CSRF attacks.
func setSessionCookie(w http.ResponseWriter, value string, maxAge int) {
	secureCookie := os.Getenv("ENVIRONMENT") == "production" || os.Getenv("COOKIE_SECURE") == "true"
	http.SetCookie(w, &http.Cookie{
		Name:     authmw.SessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   secureCookie,
		MaxAge:   maxAge,
	})
}

// loginHandler authenticates credentials and issues the session cookie.
func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest

	// 1. Parse request body
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, errors.NewInvalidInput("invalid request body"))
		return
	}

	// 2. Sanitize inputs (before validation)
	req.Email = sanitizeEmail(req.Email, 255)
	req.Password = sanitizeInput(req.Password, 128, true)

	// 3. Validate DTO
	if err := validateRequest(&req); err != nil {
		writeErrorResponse(w, err)
		return
	}

	// 4. Call service layer (already validated and sanitized)
	user, appErr := app.accountService.Authenticate(r.Context(), req.Email, req.Password)
	if appErr != nil {
		writeErrorResponse(w, appErr)
		return
	}

	token, err := services.IssueSessionToken(user)
	if err != nil {
		reqLogger := authmw.GetLoggerFromContext(r.Context())
		reqLogger.Error().Err(err).Msg("failed to sign session token")
		writeErrorResponse(w, errors.NewInternal("could not establish session"))
		return
	}

	setSessionCookie(w, token, int(services.SessionTTL().Seconds()))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(dto.NewUserResponse(user))
}

// logoutHandler clears the session cookie. The token is stateless, so there
// is nothing to revoke server-side.
func (app *application) logoutHandler(w http.ResponseWriter, r *http.Request) {
	setSessionCookie(w, "", -1)
	w.WriteHeader(http.StatusNoContent)
}

// verifyEmailHandler redeems the verification token from the mailed link.
// Redeeming an already-used token reports success again.
func (app *application) verifyEmailHandler(w http.ResponseWriter, r *http.Request) {
	token := sanitizeInput(r.URL.Query().Get("token"), 64, false)

	ok, appErr := app.verificationService.VerifyEmail(r.Context(), token)
	if appErr != nil {
		writeErrorResponse(w, appErr)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"message": "invalid verification token",
		})
		return
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"message": "email verified",
	})
}

// forgotPasswordHandler opens a password reset and mails the reset link.
func (app *application) forgotPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest

	// 1. Parse JSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, errors.NewInvalidInput("invalid request body"))
		return
	}

	// 2. Sanitize email
	req.Email = sanitizeEmail(req.Email, 255)

	// 3. Validate DTO
	if err := validateRequest(&req); err != nil {
		writeErrorResponse(w, err)
		return
	}

	// 4. Call service. Unknown addresses are reported as such so the page
	// can tell the reader to check their spelling.
	if appErr := app.passwordResetService.ForgotPassword(r.Context(), req.Email); appErr != nil {
		writeErrorResponse(w, appErr)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{
		"message": "a password reset link has been sent",
	})
}

// resetPasswordHandler redeems a reset token for a new password.
func (app *application) resetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, errors.NewInvalidInput("invalid request body"))
		return
	}

	req.Email = sanitizeEmail(req.Email, 255)
	req.Token = sanitizeInput(req.Token, 64, false)
	// Sanitize password (preserve special characters)
	req.NewPassword = sanitizeInput(req.NewPassword, 128, true)

	if err := validateRequest(&req); err != nil {
		writeErrorResponse(w, err)
		return
	}

	if appErr := app.passwordResetService.ResetPassword(r.Context(), req.Email, req.Token, req.NewPassword); appErr != nil {
		writeErrorResponse(w, appErr)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"message": "password updated",
	})
}

// meHandler returns the account of the authenticated session.
func (app *application) meHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := authmw.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "user not found in context", http.StatusUnauthorized)
		return
	}

	user, appErr := app.accountService.GetUser(r.Context(), userID)
	if appErr != nil {
		writeErrorResponse(w, appErr)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dto.NewUserResponse(user))
}

// parseIDParam reads the {id} route parameter.
func parseIDParam(r *http.Request) (int64, *errors.AppError) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, errors.NewInvalidInput("invalid user id")
	}
	return id, nil
}

// writeErrorResponse writes an error response in a consistent format
func writeErrorResponse(w http.ResponseWriter, appErr *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)

	errResp := dto.ErrorResponse{
		Error: appErr.Message,
		Code:  string(appErr.Code),
	}

	json.NewEncoder(w).Encode(errResp)
}
