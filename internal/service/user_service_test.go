package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"beauty-api/internal/domain"
)

type mockUserRepo struct {
	usersByID    map[string]domain.User
	usersByEmail map[string]string
	usersByAuth  map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
		usersByAuth:  make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.usersByID[user.ID] = user
	if user.Email != "" {
		m.usersByEmail[user.Email] = user.ID
	}
	if user.AuthProvider != "" && user.AuthSubject != "" {
		key := user.AuthProvider + "|" + user.AuthSubject
		m.usersByAuth[key] = user.ID
	}
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	id, ok := m.usersByEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(context.Background(), id)
}

func (m *mockUserRepo) GetByAuth(_ context.Context, provider, subject string) (domain.User, error) {
	key := provider + "|" + subject
	id, ok := m.usersByAuth[key]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(context.Background(), id)
}

func (m *mockUserRepo) VerifyEmail(_ context.Context, id string, verifiedAt time.Time) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.EmailVerifiedAt = &verifiedAt
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) LinkOAuth(_ context.Context, id, provider, subject string) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.AuthProvider = provider
	user.AuthSubject = subject
	m.usersByID[id] = user
	if provider != "" && subject != "" {
		key := provider + "|" + subject
		m.usersByAuth[key] = id
	}
	return nil
}

func (m *mockUserRepo) UpdateDisplayName(_ context.Context, id, displayName string) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.DisplayName = displayName
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	delete(m.usersByID, id)
	delete(m.usersByEmail, user.Email)
	delete(m.usersByAuth, user.AuthProvider+"|"+user.AuthSubject)
	return nil
}

func TestUserServiceCreateUser(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(zap.NewNop(), repo)

	user, err := svc.CreateUser(context.Background(), CreateUserInput{
		Email:       " Mina@Example.com ",
		DisplayName: "mina",
		Password:    "secret123",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.Email != "mina@example.com" {
		t.Fatalf("expected normalized email, got %s", user.Email)
	}
	if user.AuthProvider != domain.AuthProviderPassword {
		t.Fatalf("expected password provider, got %s", user.AuthProvider)
	}
	if user.PasswordHash == "" || user.PasswordHash == "secret123" {
		t.Fatalf("expected hashed password")
	}

	if _, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "mina@example.com", Password: "other123"}); !errors.Is(err, ErrEmailInUse) {
		t.Fatalf("expected ErrEmailInUse, got %v", err)
	}
	if _, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "x@example.com", Password: "123"}); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if _, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "  ", Password: "secret123"}); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestUserServiceAuthenticate(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(zap.NewNop(), repo)
	if _, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "mina@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	user, err := svc.Authenticate(context.Background(), "MINA@example.com", "secret123")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if user.Email != "mina@example.com" {
		t.Fatalf("unexpected user %+v", user)
	}

	cases := []struct{ email, password string }{
		{"mina@example.com", "wrong"},
		{"ghost@example.com", "secret123"},
		{"", ""},
	}
	for _, tc := range cases {
		if _, err := svc.Authenticate(context.Background(), tc.email, tc.password); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials for %q, got %v", tc.email, err)
		}
	}
}

func TestUserServiceUpsertOAuthUser_LinksExistingByEmail(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(zap.NewNop(), repo)

	user := domain.User{
		ID:        "u1",
		Email:     "user@example.com",
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	res, err := svc.UpsertOAuthUser(context.Background(), OAuthInput{
		Provider:    "google",
		Subject:     "sub-1",
		Email:         "user@example.com",
		EmailVerified: true,
		DisplayName:   "Test",
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if res.AuthProvider != "google" || res.AuthSubject != "sub-1" {
		t.Fatalf("expected oauth linked")
	}
	if res.EmailVerifiedAt == nil {
		t.Fatalf("expected email verified")
	}
	if res.DisplayName != "Test" {
		t.Fatalf("expected display name filled from provider, got %q", res.DisplayName)
	}

	stored, err := repo.GetByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected stored user, got %v", err)
	}
	if stored.AuthProvider != "google" || stored.AuthSubject != "sub-1" {
		t.Fatalf("expected stored oauth link")
	}
	if stored.EmailVerifiedAt == nil {
		t.Fatalf("expected stored email verified")
	}
}

func TestUserServiceUpsertOAuthUser_CreatesNewAndReuses(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(zap.NewNop(), repo)

	res, err := svc.UpsertOAuthUser(context.Background(), OAuthInput{
		Provider:    "google",
		Subject:     "sub-2",
		Email:         "new@example.com",
		EmailVerified: true,
		DisplayName:   "New",
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if res.ID == "" || res.AuthProvider != "google" || res.AuthSubject != "sub-2" {
		t.Fatalf("expected new oauth user")
	}

	again, err := svc.UpsertOAuthUser(context.Background(), OAuthInput{Provider: "Google", Subject: "sub-2"})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if again.ID != res.ID {
		t.Fatalf("expected same user on second sign-in, got %s vs %s", again.ID, res.ID)
	}
}

func TestUserServiceUpsertOAuthUser_UnverifiedEmailDoesNotLink(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(zap.NewNop(), repo)
	owner, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "owner@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	_, err = svc.UpsertOAuthUser(context.Background(), OAuthInput{Provider: "google", Subject: "other", Email: "owner@example.com"})
	if !errors.Is(err, ErrEmailInUse) {
		t.Fatalf("expected ErrEmailInUse, got %v", err)
	}
	stored, _ := repo.GetByID(context.Background(), owner.ID)
	if stored.AuthProvider != domain.AuthProviderPassword || stored.AuthSubject != "" {
		t.Fatalf("expected owner left untouched, got %+v", stored)
	}

	fresh, err := svc.UpsertOAuthUser(context.Background(), OAuthInput{Provider: "google", Subject: "s-9", Email: "fresh@example.com"})
	if err != nil {
		t.Fatalf("expected new user, got %v", err)
	}
	if fresh.EmailVerifiedAt != nil {
		t.Fatalf("expected unverified email to stay unverified")
	}
}

func TestUserServiceDeleteUser(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(zap.NewNop(), repo)
	user, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "gone@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if err := svc.DeleteUser(context.Background(), user.ID); err != nil {
		t.Fatalf("expected delete, got %v", err)
	}
	if _, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "gone@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("expected email free after delete, got %v", err)
	}
	if err := svc.DeleteUser(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserServiceUpsertOAuthUser_Invalid(t *testing.T) {
	svc := NewUserService(zap.NewNop(), newMockUserRepo())
	inputs := []OAuthInput{
		{Provider: "", Subject: "s"},
		{Provider: "google", Subject: " "},
		{Provider: "password", Subject: "s"},
		{Provider: "anonymous", Subject: "s"},
	}
	for _, in := range inputs {
		if _, err := svc.UpsertOAuthUser(context.Background(), in); !errors.Is(err, ErrOAuthInvalid) {
			t.Fatalf("expected ErrOAuthInvalid for %+v, got %v", in, err)
		}
	}
}

func TestUserServiceCreateGuest(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(zap.NewNop(), repo)

	guest, err := svc.CreateGuest(context.Background())
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if !guest.IsGuest || guest.AuthProvider != domain.AuthProviderAnonymous || guest.Email != "" {
		t.Fatalf("unexpected guest %+v", guest)
	}
	if _, err := svc.GetUser(context.Background(), guest.ID); err != nil {
		t.Fatalf("expected guest stored, got %v", err)
	}
	if _, err := svc.GetUser(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
