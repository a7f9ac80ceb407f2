package gotrue

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrymomot/sessionkit/pkg/session"
)

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type tokenResponse struct {
	AccessToken  string        `json:"access_token"`
	TokenType    string        `json:"token_type"`
	ExpiresIn    int64         `json:"expires_in"`
	ExpiresAt    int64         `json:"expires_at"`
	RefreshToken string        `json:"refresh_token"`
	User         *userResponse `json:"user"`
}

// signUpResponse is either a token response (auto-confirmed accounts) or a
// bare user record awaiting confirmation.
type signUpResponse struct {
	tokenResponse
	ID    string `json:"id"`
	Email string `json:"email"`
}

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// sessionFromToken builds a session from a token response. Subject, email
// and expiry fall back to the unverified access token claims; the server
// already authenticated the token and the client only needs its contents.
func sessionFromToken(tr tokenResponse, now time.Time) (*session.Session, error) {
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("%w: missing access token", ErrInvalidResponse)
	}

	var claims tokenClaims
	_, _, parseErr := jwt.NewParser().ParseUnverified(tr.AccessToken, &claims)

	subject, email := claims.Subject, claims.Email
	if tr.User != nil {
		if tr.User.ID != "" {
			subject = tr.User.ID
		}
		if tr.User.Email != "" {
			email = tr.User.Email
		}
	}
	if subject == "" {
		if parseErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, parseErr)
		}
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidResponse)
	}

	var expiresAt time.Time
	switch {
	case tr.ExpiresAt > 0:
		expiresAt = time.Unix(tr.ExpiresAt, 0)
	case tr.ExpiresIn > 0:
		expiresAt = now.Add(time.Duration(tr.ExpiresIn) * time.Second)
	case claims.ExpiresAt != nil:
		expiresAt = claims.ExpiresAt.Time
	default:
		return nil, fmt.Errorf("%w: missing expiry", ErrInvalidResponse)
	}

	return session.New(subject, session.Credentials{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		TokenType:    tr.TokenType,
	}, expiresAt).WithEmail(email), nil
}
