// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/tracknest/tracknest/internal/auth"
	"github.com/tracknest/tracknest/internal/database"
	"github.com/tracknest/tracknest/internal/logging"
	"github.com/tracknest/tracknest/internal/validation"
)

// LoginRequest is the credential payload for POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginResponse carries the issued token and its expiry.
type LoginResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login handles POST /api/v1/auth/login. On success the token is
// returned in the body and also set as an HTTP-only cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("invalid JSON body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	user, err := h.db.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// Burn a hash comparison so unknown usernames take as long
			// as wrong passwords.
			_ = bcrypt.CompareHashAndPassword(
				[]byte("$2a$12$000000000000000000000uGyUltJ0cgW0HSg8p4XypnWTsYC9CS6"),
				[]byte(req.Password))
			rw.Unauthorized("invalid username or password")
			return
		}
		rw.DatabaseError(err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logging.Warn().Str("username", req.Username).Msg("Login failed")
		rw.Unauthorized("invalid username or password")
		return
	}

	token, err := h.jwtManager.GenerateToken(user.Username, user.Role)
	if err != nil {
		logging.Error().Err(err).Msg("Token generation failed")
		rw.InternalError("failed to issue token")
		return
	}

	expiresAt := time.Now().Add(h.config.Security.SessionTimeout)
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https",
	})

	logging.Info().Str("username", user.Username).Str("role", user.Role).Msg("User logged in")
	rw.Success(LoginResponse{
		Token:     token,
		Username:  user.Username,
		Role:      user.Role,
		ExpiresAt: expiresAt,
	})
}

// Logout handles POST /api/v1/auth/logout by expiring the token cookie.
// Tokens themselves stay valid until expiry; logout is cookie hygiene.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	NewResponseWriter(w, r).Success(map[string]string{"status": "logged out"})
}

// Me handles GET /api/v1/auth/me, returning the authenticated claims.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	claims, ok := r.Context().Value(auth.ClaimsContextKey).(*auth.Claims)
	if !ok {
		rw.Unauthorized("not authenticated")
		return
	}

	rw.Success(map[string]string{
		"username": claims.Username,
		"role":     claims.Role,
	})
}
