package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pharmapos/internal/dto"
	"pharmapos/internal/model"
	"pharmapos/internal/repository"
	"pharmapos/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	SignUp(ctx context.Context, req dto.SignUpRequest) (*dto.SessionResponse, error)
	SignIn(ctx context.Context, req dto.SignInRequest) (*dto.SessionResponse, error)
	// SignOut is stateless: the client discards its token.
	SignOut(ctx context.Context, userID string) error
	CurrentUser(ctx context.Context, userID string) (*dto.AccountResponse, error)
	// ParseToken validates a bearer token and returns its user id.
	ParseToken(token string) (string, error)
}

type authService struct {
	repo    repository.AccountRepository
	secret  []byte
	ttl     time.Duration
	cost    int
	now     func() time.Time
}

func NewAuthService(repo repository.AccountRepository, secret string, sessionHours int) AuthService {
	if sessionHours <= 0 {
		sessionHours = 24
	}
	return &authService{
		repo:    repo,
		secret:  []byte(secret),
		ttl:     time.Duration(sessionHours) * time.Hour,
		cost:    bcrypt.DefaultCost,
		now:     time.Now,
	}
}

func (s *authService) SignUp(ctx context.Context, req dto.SignUpRequest) (*dto.SessionResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, err
	}
	acc := &model.Account{
		ID:           store.NewID("user", s.now()),
		Email:        email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hash),
	}
	if err := model.Validate(acc); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, acc); err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}
	log.Info().Str("user_id", acc.ID).Msg("account created")
	return s.issue(acc)
}

func (s *authService) SignIn(ctx context.Context, req dto.SignInRequest) (*dto.SessionResponse, error) {
	acc, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Debug().Str("email", req.Email).Msg("sign in: no account")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(req.Password)); err != nil {
		log.Debug().Str("user_id", acc.ID).Msg("sign in: incorrect password")
		return nil, ErrInvalidCredentials
	}
	return s.issue(acc)
}

func (s *authService) SignOut(_ context.Context, userID string) error {
	log.Info().Str("user_id", userID).Msg("signed out")
	return nil
}

func (s *authService) CurrentUser(ctx context.Context, userID string) (*dto.AccountResponse, error) {
	acc, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	resp := accountToResponse(acc)
	return &resp, nil
}

func (s *authService) ParseToken(raw string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return "", ErrInvalidCredentials
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidCredentials
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", ErrInvalidCredentials
	}
	return userID, nil
}

func (s *authService) issue(acc *model.Account) (*dto.SessionResponse, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id": acc.ID,
		"email":   acc.Email,
		"iat":     now.Unix(),
		"exp":     now.Add(s.ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}
	return &dto.SessionResponse{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresIn:   int(s.ttl.Seconds()),
		User:        accountToResponse(acc),
	}, nil
}
