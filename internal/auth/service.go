package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DMHCAIT/Bag-kibana-sub000/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidCode  = errors.New("invalid one-time code")
	ErrInvalidToken = errors.New("invalid token")
)

// CodeVerifier checks a one-time code sent to the phone out of band.
// Dispatching the code is an external concern; only verification lives here.
type CodeVerifier interface {
	Verify(ctx context.Context, phone, code string) error
}

// UserRepo is the slice of the profile store this service needs.
type UserRepo interface {
	GetUserByPhone(ctx context.Context, phone string) (*domain.User, error)
	PutUser(ctx context.Context, user *domain.User) error
}

type Service struct {
	repo      UserRepo
	verifier  CodeVerifier
	jwtSecret string
	tokenTTL  time.Duration
}

func NewService(repo UserRepo, verifier CodeVerifier, jwtSecret string) *Service {
	return &Service{
		repo:      repo,
		verifier:  verifier,
		jwtSecret: jwtSecret,
		tokenTTL:  7 * 24 * time.Hour,
	}
}

// Login exchanges a verified one-time code for a signed token, creating the
// user record on first login.
func (s *Service) Login(ctx context.Context, phone, code string) (string, *domain.User, error) {
	if err := s.verifier.Verify(ctx, phone, code); err != nil {
		return "", nil, ErrInvalidCode
	}

	user, err := s.repo.GetUserByPhone(ctx, phone)
	if err != nil {
		now := time.Now().UTC()
		user = &domain.User{
			ID:        uuid.NewString(),
			Phone:     phone,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if putErr := s.repo.PutUser(ctx, user); putErr != nil {
			return "", nil, fmt.Errorf("failed to create user: %w", putErr)
		}
	}

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"phone":   user.Phone,
		"exp":     time.Now().Add(s.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, user, nil
}

// VerifyToken returns the user id carried by a valid token.
func (s *Service) VerifyToken(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return "", ErrInvalidToken
	}
	return userID, nil
}

// StaticVerifier accepts a single fixed code. Development use only; a real
// deployment plugs an SMS provider behind CodeVerifier.
type StaticVerifier struct {
	Code string
}

func (v StaticVerifier) Verify(_ context.Context, _, code string) error {
	if code != v.Code {
		return ErrInvalidCode
	}
	return nil
}
