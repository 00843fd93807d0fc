package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/snapwitch/snapwitch/internal/api/models"
	"github.com/snapwitch/snapwitch/internal/api/response"
	"github.com/snapwitch/snapwitch/internal/auth"
)

// TokenHandler handles bearer-token issuance.
type TokenHandler struct {
	tokens *auth.TokenService
	logger zerolog.Logger
}

// NewTokenHandler creates a new TokenHandler.
func NewTokenHandler(tokens *auth.TokenService, logger zerolog.Logger) *TokenHandler {
	return &TokenHandler{tokens: tokens, logger: logger}
}

type tokenRequest struct {
	Secret string `json:"secret"`
	Client string `json:"client"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Mint handles POST /v1/tokens - issue a bearer token to a caller presenting
// the shared secret.
func (h *TokenHandler) Mint(w http.ResponseWriter, r *http.Request) {
	var input tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if input.Client == "" {
		response.BadRequest(w, r, "client name is required", []models.FieldError{{Field: "client", Message: "must not be empty"}})
		return
	}
	if !h.tokens.VerifySecret(input.Secret) {
		response.Unauthorized(w, r, "invalid shared secret")
		return
	}

	token, expiresAt, err := h.tokens.Issue(input.Client)
	if err != nil {
		h.logger.Error().Err(err).Str("client", input.Client).Msg("token issuance failed")
		response.InternalError(w, r, "token issuance failed")
		return
	}

	h.logger.Info().Str("client", input.Client).Time("expires_at", expiresAt).Msg("token issued")
	response.JSON(w, r, http.StatusCreated, tokenResponse{Token: token, ExpiresAt: expiresAt})
}
