package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"beauty-api/internal/domain"
	"beauty-api/internal/repository"
)

// UserService coordina reglas de negocio para usuarios.
type UserService struct {
	logger *zap.Logger
	users  repository.UserRepository
}

func NewUserService(logger *zap.Logger, users repository.UserRepository) *UserService {
	return &UserService{
		logger: logger,
		users:  users,
	}
}

type CreateUserInput struct {
	Email        string
	DisplayName  string
	AuthProvider string
	AuthSubject  string
	Password     string
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrOAuthInvalid       = errors.New("oauth data invalid")
	ErrRateLimited        = errors.New("rate limited")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrEmailInUse         = errors.New("email already in use")
	ErrWeakPassword       = errors.New("password should be at least 6 characters")
)

const minPasswordLength = 6

func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	email := normalizeEmail(input.Email)
	if email == "" {
		return domain.User{}, ErrInvalidEmail
	}
	password := strings.TrimSpace(input.Password)
	if len(password) < minPasswordLength {
		return domain.User{}, ErrWeakPassword
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.User{}, ErrEmailInUse
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	authProvider := strings.ToLower(strings.TrimSpace(input.AuthProvider))
	if authProvider == "" {
		authProvider = domain.AuthProviderPassword
	}
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  strings.TrimSpace(input.DisplayName),
		AuthProvider: authProvider,
		AuthSubject:  strings.TrimSpace(input.AuthSubject),
		PasswordHash: string(hashBytes),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, ErrEmailInUse
		}
		return domain.User{}, err
	}

	return user, nil
}

func (s *UserService) Authenticate(ctx context.Context, emailAddr, password string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if user.PasswordHash == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// OAuthInput es la identidad extraída de un id token ya verificado.
type OAuthInput struct {
	Provider      string
	Subject       string
	Email         string
	EmailVerified bool
	DisplayName   string
	PhotoURL      string
}

// UpsertOAuthUser busca por identidad; solo vincula por email si el proveedor lo verificó.
// Un email sin verificar que ya pertenece a otra cuenta devuelve ErrEmailInUse.
func (s *UserService) UpsertOAuthUser(ctx context.Context, input OAuthInput) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	provider := strings.ToLower(strings.TrimSpace(input.Provider))
	subject := strings.TrimSpace(input.Subject)
	emailAddr := normalizeEmail(input.Email)
	displayName := strings.TrimSpace(input.DisplayName)

	if provider == "" || subject == "" || provider == domain.AuthProviderPassword || provider == domain.AuthProviderAnonymous {
		return domain.User{}, ErrOAuthInvalid
	}

	user, err := s.users.GetByAuth(ctx, provider, subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	if emailAddr != "" {
		existing, err := s.users.GetByEmail(ctx, emailAddr)
		switch {
		case err == nil && !input.EmailVerified:
			s.logger.Warn("federated sign-in with unverified email of existing account",
				zap.String("provider", provider), zap.String("user_id", existing.ID))
			return domain.User{}, ErrEmailInUse
		case err == nil:
			return s.linkOAuth(ctx, existing, provider, subject, displayName)
		case !errors.Is(err, pgx.ErrNoRows):
			return domain.User{}, err
		}
	}

	now := time.Now().UTC()
	user = domain.User{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		DisplayName:  displayName,
		AuthProvider: provider,
		AuthSubject:  subject,
		CreatedAt:    now,
	}
	if emailAddr != "" && input.EmailVerified {
		user.EmailVerifiedAt = &now
	}
	if err := s.users.Create(ctx, user); err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, ErrEmailInUse
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *UserService) linkOAuth(ctx context.Context, existing domain.User, provider, subject, displayName string) (domain.User, error) {
	if err := s.users.LinkOAuth(ctx, existing.ID, provider, subject); err != nil {
		return domain.User{}, err
	}
	verifiedAt := time.Now().UTC()
	if err := s.users.VerifyEmail(ctx, existing.ID, verifiedAt); err != nil {
		return domain.User{}, err
	}
	existing.AuthProvider = provider
	existing.AuthSubject = subject
	existing.EmailVerifiedAt = &verifiedAt
	if displayName != "" && existing.DisplayName == "" {
		existing.DisplayName = displayName
	}
	return existing, nil
}

// CreateGuest registra un visitante anónimo para atribuir sus resultados.
func (s *UserService) CreateGuest(ctx context.Context) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}
	user := domain.User{
		ID:           uuid.NewString(),
		AuthProvider: domain.AuthProviderAnonymous,
		IsGuest:      true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrUserNotFound
	}
	return user, err
}

func (s *UserService) SetDisplayName(ctx context.Context, id, displayName string) error {
	err := s.users.UpdateDisplayName(ctx, id, strings.TrimSpace(displayName))
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrUserNotFound
	}
	return err
}

// DeleteUser borra la credencial; se usa para deshacer un alta incompleta.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	err := s.users.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrUserNotFound
	}
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
