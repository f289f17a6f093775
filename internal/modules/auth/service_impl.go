package auth

import (
	"context"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/georgemunganga/orderdesk/internal/apperr"
	"github.com/georgemunganga/orderdesk/internal/modules/user"
)

const invalidCredentials = "Invalid credentials"

type service struct {
	users  user.Service
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService creates a new auth service signing HS256 tokens with secret.
func NewService(users user.Service, secret string, ttl time.Duration) Service {
	return &service{users: users, secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *service) Login(ctx context.Context, login, password string) (*Session, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, apperr.InvalidInput("Email and password are required")
	}

	u, err := s.users.FindByLogin(ctx, login)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.Unauthenticated(invalidCredentials)
	}
	if err != nil {
		return nil, err
	}
	if !s.users.ValidatePassword(u, password) {
		log.WithField("user_id", u.ID).Info("Login rejected: wrong password")
		return nil, apperr.Unauthenticated(invalidCredentials)
	}
	if !u.Approved {
		return nil, apperr.Forbidden("Your account is pending approval by an administrator")
	}
	if !u.IsActive {
		return nil, apperr.Forbidden("Your account has been deactivated")
	}

	token, err := s.sign(u)
	if err != nil {
		return nil, err
	}
	return &Session{User: profileOf(u), Token: token}, nil
}

func (s *service) sign(u *user.User) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: u.ID,
		Role:   u.Role,
		StandardClaims: jwt.StandardClaims{
			Subject:   u.Username,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return token, nil
}

func (s *service) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, apperr.Unauthenticated("Invalid or expired token")
	}
	return claims, nil
}
