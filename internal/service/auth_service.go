package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"beauty-api/internal/domain"
	"beauty-api/internal/repository"
)

var (
	ErrProfileNotFound     = errors.New("profile not found")
	ErrUnsupportedAuthFlow = errors.New("unsupported sign-in method")
)

type AuthMethod string

const (
	AuthMethodPassword  AuthMethod = "password"
	AuthMethodFederated AuthMethod = "federated"
	AuthMethodGuest     AuthMethod = "guest"
)

type SignUpInput struct {
	Username string `json:"username" validate:"required,min=2,max=40"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Birthday string `json:"birthday" validate:"required,datetime=2006-01-02"`
}

type SignInInput struct {
	Method    AuthMethod
	Email     string
	Password  string
	Federated FederatedInput
}

// AuthSession es el resultado de un alta o ingreso exitoso.
type AuthSession struct {
	User         domain.User         `json:"user"`
	Tokens       TokenPair           `json:"tokens"`
	NeedsProfile bool                `json:"needs_profile"`
	Profile      *domain.UserProfile `json:"profile,omitempty"`
}

type AuthEventType string

const (
	AuthEventSignedUp     AuthEventType = "signed_up"
	AuthEventSignedIn     AuthEventType = "signed_in"
	AuthEventSignedOut    AuthEventType = "signed_out"
	AuthEventProfileSaved AuthEventType = "profile_saved"
)

type AuthEvent struct {
	Type   AuthEventType
	UserID string
	At     time.Time
}

// IdentityProvider es la capacidad de identidad que consumen los handlers.
type IdentityProvider interface {
	SignUp(ctx context.Context, input SignUpInput) (AuthSession, error)
	SignIn(ctx context.Context, input SignInInput) (AuthSession, error)
	SignOut(ctx context.Context, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
	GetProfile(ctx context.Context, userID string) (domain.UserProfile, error)
	SaveProfile(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, error)
	OnAuthChange(fn func(AuthEvent)) (unsubscribe func())
}

// AuthService implementa IdentityProvider sobre usuarios propios y JWT.
type AuthService struct {
	logger   *zap.Logger
	users    *UserService
	profiles repository.ProfileRepository
	jwt      *JWTService
	verifier IdentityTokenVerifier

	mu        sync.RWMutex
	listeners map[int]func(AuthEvent)
	nextID    int
}

// NewAuthService arma el servicio; sin verifier el ingreso federado queda deshabilitado.
func NewAuthService(logger *zap.Logger, users *UserService, profiles repository.ProfileRepository, jwt *JWTService, verifier IdentityTokenVerifier) *AuthService {
	if verifier == nil {
		verifier = NewDisabledTokenVerifier()
	}
	return &AuthService{
		logger:    logger,
		users:     users,
		profiles:  profiles,
		jwt:       jwt,
		verifier:  verifier,
		listeners: make(map[int]func(AuthEvent)),
	}
}

// SignUp crea la credencial, fija el display name y escribe el perfil.
// Si el perfil falla la credencial se borra para que el alta pueda reintentarse.
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (AuthSession, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = normalizeEmail(input.Email)
	input.Birthday = strings.TrimSpace(input.Birthday)
	if err := validateStruct(input); err != nil {
		return AuthSession{}, err
	}

	user, err := s.users.CreateUser(ctx, CreateUserInput{
		Email:       input.Email,
		DisplayName: input.Username,
		Password:    input.Password,
	})
	if err != nil {
		return AuthSession{}, err
	}

	now := time.Now().UTC()
	profile, err := s.profiles.Upsert(ctx, domain.UserProfile{
		UserID:    user.ID,
		Username:  input.Username,
		Email:     user.Email,
		Birthday:  input.Birthday,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		s.logger.Error("profile write failed after sign-up", zap.String("user_id", user.ID), zap.Error(err))
		if derr := s.users.DeleteUser(context.WithoutCancel(ctx), user.ID); derr != nil {
			s.logger.Error("rollback of sign-up failed", zap.String("user_id", user.ID), zap.Error(derr))
		}
		return AuthSession{}, err
	}

	session, err := s.session(ctx, user, &profile)
	if err != nil {
		return AuthSession{}, err
	}
	s.emit(AuthEventSignedUp, user.ID)
	return session, nil
}

// SignIn resuelve los tres métodos; federated marca needs_profile si falta el perfil.
func (s *AuthService) SignIn(ctx context.Context, input SignInInput) (AuthSession, error) {
	var (
		user domain.User
		err  error
	)
	switch input.Method {
	case AuthMethodPassword:
		user, err = s.users.Authenticate(ctx, input.Email, input.Password)
	case AuthMethodFederated:
		var identity OAuthInput
		identity, err = s.verifier.Verify(ctx, input.Federated.Provider, input.Federated.IDToken)
		if err == nil {
			user, err = s.users.UpsertOAuthUser(ctx, identity)
		}
	case AuthMethodGuest:
		user, err = s.users.CreateGuest(ctx)
	default:
		return AuthSession{}, ErrUnsupportedAuthFlow
	}
	if err != nil {
		return AuthSession{}, err
	}

	var profile *domain.UserProfile
	if !user.IsGuest {
		p, err := s.GetProfile(ctx, user.ID)
		switch {
		case err == nil:
			profile = &p
		case errors.Is(err, ErrProfileNotFound):
		default:
			return AuthSession{}, err
		}
	}

	session, err := s.session(ctx, user, profile)
	if err != nil {
		return AuthSession{}, err
	}
	session.NeedsProfile = input.Method == AuthMethodFederated && profile == nil
	s.emit(AuthEventSignedIn, user.ID)
	return session, nil
}

func (s *AuthService) SignOut(ctx context.Context, refreshToken string) error {
	claims, err := s.jwt.RevokeRefresh(ctx, refreshToken)
	if err != nil {
		return err
	}
	s.emit(AuthEventSignedOut, claims.UserID)
	return nil
}

// Refresh rota el par de tokens.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	return s.jwt.RefreshPair(ctx, refreshToken)
}

func (s *AuthService) GetProfile(ctx context.Context, userID string) (domain.UserProfile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserProfile{}, ErrProfileNotFound
	}
	return profile, err
}

// SaveProfile escribe el perfil y replica el username como display name.
func (s *AuthService) SaveProfile(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, error) {
	profile.Username = strings.TrimSpace(profile.Username)
	profile.Email = normalizeEmail(profile.Email)
	profile.Birthday = strings.TrimSpace(profile.Birthday)
	if err := validateStruct(profile); err != nil {
		return domain.UserProfile{}, err
	}

	user, err := s.users.GetUser(ctx, profile.UserID)
	if err != nil {
		return domain.UserProfile{}, err
	}
	if profile.Email == "" {
		profile.Email = user.Email
	}

	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	saved, err := s.profiles.Upsert(ctx, profile)
	if err != nil {
		return domain.UserProfile{}, err
	}
	if err := s.users.SetDisplayName(ctx, profile.UserID, profile.Username); err != nil {
		s.logger.Warn("display name update failed", zap.String("user_id", profile.UserID), zap.Error(err))
	}
	s.emit(AuthEventProfileSaved, profile.UserID)
	return saved, nil
}

// OnAuthChange registra un listener; la función devuelta lo quita.
func (s *AuthService) OnAuthChange(fn func(AuthEvent)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *AuthService) emit(kind AuthEventType, userID string) {
	ev := AuthEvent{Type: kind, UserID: userID, At: time.Now().UTC()}
	s.mu.RLock()
	fns := make([]func(AuthEvent), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func (s *AuthService) session(ctx context.Context, user domain.User, profile *domain.UserProfile) (AuthSession, error) {
	tokens, err := s.jwt.GeneratePair(ctx, user)
	if err != nil {
		return AuthSession{}, err
	}
	return AuthSession{User: user, Tokens: tokens, Profile: profile}, nil
}
