// internal/services/auth_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/story-mcp/internal/config"
	"github.com/javajoker/story-mcp/internal/utils"
)

var (
	ErrAuthDisabled       = errors.New("operator authentication is not configured")
	ErrInvalidCredentials = errors.New("invalid API key")
)

type AuthService struct {
	cfg *config.Config
}

type TokenRequest struct {
	APIKey   string `json:"api_key" validate:"required,min=16"`
	Operator string `json:"operator,omitempty" validate:"max=100"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // in seconds
	Operator    string `json:"operator"`
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg}
}

// Enabled reports whether any operator API key is configured.
func (s *AuthService) Enabled() bool {
	return len(s.cfg.JWT.APIKeyHashes) > 0
}

// IssueToken exchanges an operator API key for a JWT.
func (s *AuthService) IssueToken(req *TokenRequest) (*TokenResponse, error) {
	if !s.Enabled() {
		return nil, ErrAuthDisabled
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	idx := utils.MatchAPIKey(s.cfg.JWT.APIKeyHashes, req.APIKey)
	if idx < 0 {
		logrus.Warn("Rejected token request with unknown API key")
		return nil, ErrInvalidCredentials
	}

	operator := req.Operator
	if operator == "" {
		operator = fmt.Sprintf("operator-%d", idx)
	}

	token, err := utils.GenerateJWT(operator, idx, s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"operator":  operator,
		"key_index": idx,
	}).Info("Issued operator token")

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   s.cfg.JWT.AccessTokenTTL * 3600,
		Operator:    operator,
	}, nil
}
