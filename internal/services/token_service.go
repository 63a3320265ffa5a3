package services

import (
	"errors"
	"time"

	"github.com/erindhoxha/mern-stack-site/internal/utils"
	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenExpired is wrapped into the Unauthorized error for expired tokens so callers can log it.
var ErrTokenExpired = errors.New("token expired")

type TokenService interface {
	Issue(userID string) (string, error)
	Verify(token string) (string, error)
}

type ClaimsUser struct {
	ID string `json:"id"`
}

// Claims mirrors the payload the React client already decodes: {"user":{"id":...}}.
type Claims struct {
	User ClaimsUser `json:"user"`
	jwt.RegisteredClaims
}

type tokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) TokenService {
	return &tokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *tokenService) Issue(userID string) (string, error) {
	const op = "TokenService.Issue"

	if userID == "" {
		return "", utils.E(utils.CodeInternal, op, "user id is required", nil)
	}

	now := s.now()
	claims := Claims{
		User: ClaimsUser{ID: userID},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to sign token", err)
	}
	return signed, nil
}

func (s *tokenService) Verify(token string) (string, error) {
	const op = "TokenService.Verify"

	if token == "" {
		return "", utils.E(utils.CodeUnauthorized, op, "No token, authorization denied", nil)
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			err = ErrTokenExpired
		}
		return "", utils.E(utils.CodeUnauthorized, op, "Token is not valid", err)
	}
	if claims.User.ID == "" {
		return "", utils.E(utils.CodeUnauthorized, op, "Token is not valid", nil)
	}
	return claims.User.ID, nil
}
