package gateway

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"resume-builder/internal/shared/auth"
)

// StaticToken returns a token source for a pre-issued bearer token.
func StaticToken(token string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: strings.TrimSpace(token), TokenType: "Bearer"})
}

type signedTokenSource struct {
	signer *auth.Signer
	claims auth.Claims
	ttl    time.Duration
	now    func() time.Time
}

// SignedToken mints tokens for subject with signer, for development against a
// backend that shares the signing secret.
func SignedToken(signer *auth.Signer, subject, email string, ttl time.Duration) oauth2.TokenSource {
	if ttl <= 0 {
		ttl = time.Hour
	}
	src := &signedTokenSource{signer: signer, ttl: ttl, now: time.Now}
	src.claims.Subject = subject
	src.claims.Email = email
	return oauth2.ReuseTokenSource(nil, src)
}

func (s *signedTokenSource) Token() (*oauth2.Token, error) {
	now := s.now().UTC()
	expiry := now.Add(s.ttl)
	claims := s.claims
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(expiry)
	signed, err := s.signer.Sign(claims)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: signed, TokenType: "Bearer", Expiry: expiry}, nil
}
