package authservice

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/samirahpartel/kirtbank/internal/domain"
	"github.com/samirahpartel/kirtbank/internal/pg"
	"github.com/samirahpartel/kirtbank/pkg/auth"
)

type Repo interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

type BalanceCreator interface {
	CreateBalance(ctx context.Context, userID int) (*domain.Balance, error)
}

type Service struct {
	userRepo       Repo
	balanceService BalanceCreator
	txManager      pg.TXManager
	hashService    auth.HashServiceInterface
	jwtService     auth.JWTServiceInterface
}

func New(repo Repo, balanceService BalanceCreator, txManager pg.TXManager, hashService auth.HashServiceInterface, jwtService auth.JWTServiceInterface) *Service {
	return &Service{
		userRepo:       repo,
		balanceService: balanceService,
		txManager:      txManager,
		hashService:    hashService,
		jwtService:     jwtService,
	}
}

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

func (s *Service) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	existingUser, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		zap.L().Error("can't find user: ", zap.Error(err))
		return nil, err
	}
	if existingUser != nil {
		zap.L().Info("user already exists", zap.String("email", email))
		return nil, ErrEmailTaken
	}
	hashedPassword, err := s.hashService.HashPassword(password)
	if err != nil {
		zap.L().Error("can't hash password: ", zap.Error(err))
		return nil, err
	}
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashedPassword,
	}
	// The user row and its empty balance land together or not at all; a
	// user without a balance cannot settle anything.
	var newUser *domain.User
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		created, err := s.userRepo.Create(ctx, user)
		if err != nil {
			return err
		}
		if _, err := s.balanceService.CreateBalance(ctx, created.ID); err != nil {
			return err
		}
		newUser = created
		return nil
	})
	if err != nil {
		zap.L().Error("can't register user: ", zap.Error(err))
		return nil, err
	}

	zap.L().Info("user successfully registered", zap.String("email", email))
	return newUser, nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil || user == nil {
		zap.L().Warn("invalid credentials", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}
	if ok := s.hashService.ComparePassword(user.PasswordHash, password); !ok {
		zap.L().Warn("invalid credentials", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}
	zap.L().Info("user successfully authenticated", zap.String("email", email))
	return user, nil
}

func (s *Service) GenerateToken(user *domain.User) (string, error) {
	expirationTime := time.Now().Add(24 * time.Hour)

	token, err := s.jwtService.GenerateJWT(user.ID, user.IsAdmin, expirationTime)
	if err != nil {
		zap.L().Error("can't generate token: ", zap.Error(err))
		return "", err
	}
	return token, nil
}
