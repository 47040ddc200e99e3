package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"beauty-api/internal/domain"
)

const (
	DefaultLanguage  = "en"
	settingsStoreTTL = 365 * 24 * time.Hour
)

var (
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrInvalidConsent      = errors.New("invalid consent choice")
	ErrMissingVisitor      = errors.New("missing visitor id")
)

// SupportedLanguages en el orden en que se ofrecen en el selector.
var SupportedLanguages = []string{
	"en", "ko", "ja", "zh", "es", "fr", "de", "ru", "ar", "hi",
	"pt", "it", "nl", "tr", "vi", "th", "id", "ms", "fil", "pl",
}

var languageMatcher = func() language.Matcher {
	tags := make([]language.Tag, 0, len(SupportedLanguages))
	for _, code := range SupportedLanguages {
		tags = append(tags, language.Make(code))
	}
	return language.NewMatcher(tags)
}()

func IsSupportedLanguage(code string) bool {
	for _, c := range SupportedLanguages {
		if c == code {
			return true
		}
	}
	return false
}

// ResolveLanguage prioriza el valor guardado, luego Accept-Language y por último inglés.
func ResolveLanguage(stored, acceptLanguage string) string {
	stored = strings.ToLower(strings.TrimSpace(stored))
	if IsSupportedLanguage(stored) {
		return stored
	}
	if strings.TrimSpace(acceptLanguage) == "" {
		return DefaultLanguage
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLanguage
	}
	_, idx, confidence := languageMatcher.Match(tags...)
	if confidence == language.No || idx < 0 || idx >= len(SupportedLanguages) {
		return DefaultLanguage
	}
	return SupportedLanguages[idx]
}

// ApplyConsent normaliza una elección de cookies. Las necesarias siempre quedan activas.
func ApplyConsent(choice string, prefs domain.ConsentPreferences, now time.Time) (domain.ConsentPreferences, error) {
	var out domain.ConsentPreferences
	switch choice {
	case domain.ConsentAcceptAll:
		out = domain.ConsentPreferences{Analytics: true, Marketing: true, Personalization: true}
	case domain.ConsentNecessaryOnly:
		out = domain.ConsentPreferences{}
	case domain.ConsentCustom:
		out = domain.ConsentPreferences{
			Analytics:       prefs.Analytics,
			Marketing:       prefs.Marketing,
			Personalization: prefs.Personalization,
		}
	default:
		return domain.ConsentPreferences{}, ErrInvalidConsent
	}
	out.Choice = choice
	out.Necessary = true
	at := now.UTC()
	out.UpdatedAt = &at
	return out, nil
}

// ConsentRequired indica que el banner debe mostrarse.
func ConsentRequired(c domain.ConsentPreferences) bool {
	return c.Choice == ""
}

type ScriptPermissions struct {
	Analytics bool `json:"analytics"`
	// Marketing habilita el tag manager.
	Marketing bool              `json:"marketing"`
	Consent   map[string]string `json:"consent"`
}

func consentState(granted bool) string {
	if granted {
		return "granted"
	}
	return "denied"
}

// Permissions deriva qué scripts de terceros pueden cargarse.
func Permissions(c domain.ConsentPreferences) ScriptPermissions {
	chosen := !ConsentRequired(c)
	return ScriptPermissions{
		Analytics: chosen && c.Analytics,
		Marketing: chosen && (c.Marketing || c.Personalization),
		Consent: map[string]string{
			"analytics_storage":       consentState(chosen && c.Analytics),
			"ad_storage":              consentState(chosen && c.Marketing),
			"personalization_storage": consentState(chosen && c.Personalization),
			"functionality_storage":   consentState(chosen && c.Necessary),
			"security_storage":        "granted",
		},
	}
}

// SettingsStore persiste las preferencias por visitante. Última escritura gana.
type SettingsStore interface {
	Get(ctx context.Context, visitorID string) (domain.Settings, error)
	Set(ctx context.Context, visitorID string, settings domain.Settings) error
}

type memorySettingsStore struct {
	mu    sync.RWMutex
	items map[string]domain.Settings
}

func NewMemorySettingsStore() SettingsStore {
	return &memorySettingsStore{items: make(map[string]domain.Settings)}
}

func (s *memorySettingsStore) Get(_ context.Context, visitorID string) (domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items[visitorID], nil
}

func (s *memorySettingsStore) Set(_ context.Context, visitorID string, settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[visitorID] = settings
	return nil
}

type redisSettingsClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type redisSettingsStore struct {
	client redisSettingsClient
	prefix string
}

func NewRedisSettingsStore(client *redis.Client) SettingsStore {
	return &redisSettingsStore{client: client, prefix: "settings:"}
}

func (s *redisSettingsStore) Get(ctx context.Context, visitorID string) (domain.Settings, error) {
	raw, err := s.client.Get(ctx, s.prefix+visitorID).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Settings{}, nil
	}
	if err != nil {
		return domain.Settings{}, err
	}
	var settings domain.Settings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

func (s *redisSettingsStore) Set(ctx context.Context, visitorID string, settings domain.Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+visitorID, raw, settingsStoreTTL).Err()
}

// SettingsService resuelve y actualiza las preferencias del visitante.
type SettingsService struct {
	logger *zap.Logger
	store  SettingsStore
	now    func() time.Time
}

func NewSettingsService(logger *zap.Logger, store SettingsStore) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{logger: logger, store: store, now: time.Now}
}

// Resolve nunca falla: si el almacén no responde se usan valores por defecto.
func (s *SettingsService) Resolve(ctx context.Context, visitorID, acceptLanguage string) domain.Settings {
	settings := s.load(ctx, visitorID)
	settings.Language = ResolveLanguage(settings.Language, acceptLanguage)
	return settings
}

func (s *SettingsService) load(ctx context.Context, visitorID string) domain.Settings {
	if visitorID == "" {
		return domain.Settings{}
	}
	stored, err := s.store.Get(ctx, visitorID)
	if err != nil {
		s.logger.Warn("settings lookup failed", zap.String("visitor_id", visitorID), zap.Error(err))
		return domain.Settings{}
	}
	return stored
}

func (s *SettingsService) SetLanguage(ctx context.Context, visitorID, code string) (domain.Settings, error) {
	if visitorID == "" {
		return domain.Settings{}, ErrMissingVisitor
	}
	code = strings.ToLower(strings.TrimSpace(code))
	if !IsSupportedLanguage(code) {
		return domain.Settings{}, ErrUnsupportedLanguage
	}
	current := s.load(ctx, visitorID)
	current.Language = code
	if err := s.store.Set(ctx, visitorID, current); err != nil {
		return domain.Settings{}, err
	}
	return current, nil
}

func (s *SettingsService) SetConsent(ctx context.Context, visitorID, choice string, prefs domain.ConsentPreferences, acceptLanguage string) (domain.Settings, error) {
	if visitorID == "" {
		return domain.Settings{}, ErrMissingVisitor
	}
	consent, err := ApplyConsent(choice, prefs, s.now())
	if err != nil {
		return domain.Settings{}, err
	}
	current := s.load(ctx, visitorID)
	current.Consent = consent
	if err := s.store.Set(ctx, visitorID, current); err != nil {
		return domain.Settings{}, err
	}
	s.logger.Info("consent updated", zap.String("visitor_id", visitorID), zap.String("choice", choice))
	current.Language = ResolveLanguage(current.Language, acceptLanguage)
	return current, nil
}
