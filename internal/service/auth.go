package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/menushare/internal/lineauth"
	"github.com/Skotchmaster/menushare/internal/logging"
	"github.com/Skotchmaster/menushare/internal/models"
	"github.com/Skotchmaster/menushare/internal/mykafka"
	"github.com/Skotchmaster/menushare/internal/repo"
	"github.com/Skotchmaster/menushare/internal/tokens"
	"github.com/Skotchmaster/menushare/internal/transport"
)

// IDTokenVerifier checks a provider-issued ID token and returns its claims.
type IDTokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*lineauth.Profile, error)
}

type AuthService struct {
	Repo     *repo.GormRepo
	Issuer   *tokens.Issuer
	Verifier IDTokenVerifier
	Events   mykafka.Publisher
}

// Login upserts the user and opens a session. With a Verifier configured the
// ID token must be valid and issued for the claimed user id.
func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*transport.TokenResponse, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "user_id", req.UserID)

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, fmt.Errorf("%w: userId required", ErrValidation)
	}

	if s.Verifier != nil {
		if req.IDToken == "" {
			return nil, fmt.Errorf("%w: idToken required", ErrUnauthorized)
		}
		profile, err := s.Verifier.Verify(ctx, req.IDToken)
		if err != nil {
			if errors.Is(err, lineauth.ErrInvalidIDToken) {
				return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
			}
			return nil, err
		}
		if profile.Subject != userID {
			return nil, fmt.Errorf("%w: id token subject mismatch", ErrUnauthorized)
		}
	}

	user := &models.User{ID: userID, DisplayName: req.DisplayName, AvatarURL: req.PictureURL}
	if err := s.Repo.UpsertUser(ctx, user); err != nil {
		return nil, err
	}

	resp, err := s.openSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	l.Info("login_success")
	publish(ctx, s.Events, mykafka.TopicUsers, userID, map[string]any{
		"type":        "user_logged_in",
		"userID":      userID,
		"displayName": req.DisplayName,
	})
	return resp, nil
}

func (s *AuthService) openSession(ctx context.Context, userID string) (*transport.TokenResponse, error) {
	pair, err := s.Issuer.Issue(userID)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.AddRefreshToken(ctx, &models.RefreshToken{
		UserID:    userID,
		Token:     tokens.Hash(pair.RefreshToken),
		JTI:       pair.RefreshJTI,
		ExpiresAt: pair.RefreshExp.Unix(),
	}); err != nil {
		return nil, err
	}
	return tokenResponse(pair), nil
}

// Refresh trades a valid refresh token for a new pair; the old token is revoked.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*transport.TokenResponse, error) {
	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.Issuer.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	stored, err := s.Repo.FindRefreshByJTI(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: refresh token not found", ErrUnauthorized)
		}
		return nil, err
	}
	if stored.Token != tokens.Hash(refreshToken) || stored.UserID != claims.Subject {
		return nil, fmt.Errorf("%w: refresh token mismatch", ErrUnauthorized)
	}

	pair, err := s.Issuer.Issue(claims.Subject)
	if err != nil {
		return nil, err
	}

	err = s.Repo.RotateRefreshToken(ctx, claims.ID, &models.RefreshToken{
		UserID:    claims.Subject,
		Token:     tokens.Hash(pair.RefreshToken),
		JTI:       pair.RefreshJTI,
		ExpiresAt: pair.RefreshExp.Unix(),
	})
	if err != nil {
		if errors.Is(err, repo.ErrRefreshUnusable) {
			return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		return nil, err
	}
	return tokenResponse(pair), nil
}

// Logout revokes the refresh token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return fmt.Errorf("%w: refreshToken required", ErrValidation)
	}
	return s.Repo.RevokeRefresh(ctx, tokens.Hash(refreshToken))
}

func tokenResponse(p *tokens.Pair) *transport.TokenResponse {
	return &transport.TokenResponse{
		Success:          true,
		AccessToken:      p.AccessToken,
		RefreshToken:     p.RefreshToken,
		AccessExpiresAt:  p.AccessExp.Unix(),
		RefreshExpiresAt: p.RefreshExp.Unix(),
	}
}
