package http

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"beauty-api/internal/domain"
	"beauty-api/internal/email"
	"beauty-api/internal/service"
)

type mockUserRepo struct {
	mu           sync.Mutex
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
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usersByID[user.ID] = user
	if user.Email != "" {
		m.usersByEmail[user.Email] = user.ID
	}
	if user.AuthProvider != "" && user.AuthSubject != "" {
		m.usersByAuth[user.AuthProvider+"|"+user.AuthSubject] = user.ID
	}
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	id, ok := m.usersByEmail[email]
	m.mu.Unlock()
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(ctx, id)
}

func (m *mockUserRepo) GetByAuth(ctx context.Context, provider, subject string) (domain.User, error) {
	m.mu.Lock()
	id, ok := m.usersByAuth[provider+"|"+subject]
	m.mu.Unlock()
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(ctx, id)
}

func (m *mockUserRepo) update(id string, fn func(*domain.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	fn(&user)
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) VerifyEmail(_ context.Context, id string, verifiedAt time.Time) error {
	return m.update(id, func(u *domain.User) { u.EmailVerifiedAt = &verifiedAt })
}

func (m *mockUserRepo) LinkOAuth(_ context.Context, id, provider, subject string) error {
	err := m.update(id, func(u *domain.User) { u.AuthProvider, u.AuthSubject = provider, subject })
	if err == nil {
		m.mu.Lock()
		m.usersByAuth[provider+"|"+subject] = id
		m.mu.Unlock()
	}
	return err
}

func (m *mockUserRepo) UpdateDisplayName(_ context.Context, id, displayName string) error {
	return m.update(id, func(u *domain.User) { u.DisplayName = displayName })
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	delete(m.usersByID, id)
	delete(m.usersByEmail, user.Email)
	delete(m.usersByAuth, user.AuthProvider+"|"+user.AuthSubject)
	return nil
}

type stubTokenVerifier map[string]service.OAuthInput

func (v stubTokenVerifier) Verify(_ context.Context, provider, idToken string) (service.OAuthInput, error) {
	identity, ok := v[idToken]
	if !ok || identity.Provider != provider {
		return service.OAuthInput{}, service.ErrIdentityTokenInvalid
	}
	return identity, nil
}

var testIdentityTokens = stubTokenVerifier{
	"tok-jin":             {Provider: "google", Subject: "g-1", Email: "jin@example.com", EmailVerified: true, DisplayName: "Jin"},
	"tok-unverified-mina": {Provider: "google", Subject: "g-attacker", Email: "mina@example.com"},
}

type mockProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]domain.UserProfile
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[string]domain.UserProfile)}
}

func (m *mockProfileRepo) Upsert(_ context.Context, p domain.UserProfile) (domain.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.profiles[p.UserID]; ok && p.PhotoURL == "" {
		p.PhotoURL = existing.PhotoURL
	}
	m.profiles[p.UserID] = p
	return p, nil
}

func (m *mockProfileRepo) GetByUserID(_ context.Context, userID string) (domain.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return domain.UserProfile{}, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockProfileRepo) UpdatePhoto(_ context.Context, userID, photoURL string, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	p.PhotoURL, p.UpdatedAt = photoURL, updatedAt
	m.profiles[userID] = p
	return nil
}

type mockLeaderboardRepo struct {
	mu      sync.Mutex
	entries []domain.LeaderboardEntry
	err     error
}

func (m *mockLeaderboardRepo) Insert(_ context.Context, entry domain.LeaderboardEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockLeaderboardRepo) Top(_ context.Context, since *time.Time, limit int) ([]domain.LeaderboardEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.LeaderboardEntry
	for _, e := range m.entries {
		if since == nil || !e.CreatedAt.Before(*since) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].BeautyScore > out[j].BeautyScore })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type mockPinger struct{ err error }

func (m mockPinger) Ping(context.Context) error { return m.err }

type mockPhotoStore struct{}

func (mockPhotoStore) Put(_ context.Context, key string, _ []byte, _ string) (string, error) {
	if key == "" {
		return "", errors.New("empty key")
	}
	return "https://cdn.example.com/" + key, nil
}

type mockContactSender struct {
	mu   sync.Mutex
	sent int
}

func (m *mockContactSender) SendContactMessage(context.Context, email.ContactMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent++
	return nil
}

func (m *mockContactSender) Enabled() bool { return true }

type denyLimiter struct{}

func (denyLimiter) Allow(string) bool { return false }
