package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"beauty-api/internal/analyzer"
	"beauty-api/internal/domain"
	"beauty-api/internal/repository"
)

// Period es la ventana temporal del ranking.
type Period string

const (
	PeriodToday  Period = "today"
	PeriodWeek   Period = "week"
	PeriodMonth  Period = "month"
	PeriodEntire Period = "entire"
)

var (
	AllPeriods       = []Period{PeriodToday, PeriodWeek, PeriodMonth, PeriodEntire}
	ErrInvalidPeriod = errors.New("invalid period")
)

const (
	defaultLeaderboardLimit = 50
	leaderboardQueryTimeout = 5 * time.Second
)

// ParsePeriod acepta today, week, month o entire; vacío equivale a today.
func ParsePeriod(raw string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return PeriodToday, nil
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodEntire:
		return p, nil
	default:
		return "", ErrInvalidPeriod
	}
}

// WindowStart calcula el inicio de la ventana en la zona de now; filtered=false para entire.
func WindowStart(period Period, now time.Time) (time.Time, bool) {
	y, m, d := now.Date()
	switch period {
	case PeriodWeek:
		return now.Add(-7 * 24 * time.Hour), true
	case PeriodMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, now.Location()), true
	case PeriodEntire:
		return time.Unix(0, 0).UTC(), false
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), true
	}
}

// ResolveDisplayName aplica la cadena displayName, local-part del email, Guest, Anonymous.
func ResolveDisplayName(entry domain.LeaderboardEntry) string {
	if name := strings.TrimSpace(entry.UserDisplayName); name != "" {
		return name
	}
	if local, _, _ := strings.Cut(strings.TrimSpace(entry.UserEmail), "@"); local != "" {
		return local
	}
	if entry.IsGuest {
		id := entry.UserID
		if len(id) > 4 {
			id = id[len(id)-4:]
		}
		return "Guest" + id
	}
	return "Anonymous"
}

// ResolveAvatar devuelve la imagen embebida si es un data URI de imagen válido.
func ResolveAvatar(entry domain.LeaderboardEntry, defaultAvatar string) string {
	if entry.ImageData == "" {
		return defaultAvatar
	}
	d, err := analyzer.DecodeDataURI(entry.ImageData)
	if err != nil || !d.IsImage() {
		return defaultAvatar
	}
	return entry.ImageData
}

// EntryPublisher recibe cada entrada nueva para el feed en vivo.
type EntryPublisher interface {
	PublishEntry(entry domain.RankedEntry)
}

type LeaderboardQuery struct {
	Period   Period
	Location *time.Location
	Seq      string
}

type LeaderboardOptions struct {
	Limit         int
	CacheTTL      time.Duration
	Location      *time.Location
	DefaultAvatar string
}

// LeaderboardService consulta y registra el ranking de puntajes.
type LeaderboardService struct {
	logger    *zap.Logger
	repo      repository.LeaderboardRepository
	cache     LeaderboardCache
	publisher EntryPublisher
	group     singleflight.Group
	opts      LeaderboardOptions
	now       func() time.Time
}

// NewLeaderboardService arma el servicio; cache y publisher pueden ser nil.
func NewLeaderboardService(logger *zap.Logger, repo repository.LeaderboardRepository, cache LeaderboardCache, publisher EntryPublisher, opts LeaderboardOptions) *LeaderboardService {
	if opts.Limit <= 0 {
		opts.Limit = defaultLeaderboardLimit
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.DefaultAvatar == "" {
		opts.DefaultAvatar = "/images/default-avatar.png"
	}
	return &LeaderboardService{
		logger:    logger,
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		opts:      opts,
		now:       time.Now,
	}
}

// Top nunca falla: ante error de consulta devuelve una lista vacía y lo registra.
func (s *LeaderboardService) Top(ctx context.Context, q LeaderboardQuery) domain.LeaderboardView {
	if q.Period == "" {
		q.Period = PeriodToday
	}
	loc := q.Location
	if loc == nil {
		loc = s.opts.Location
	}

	view := domain.LeaderboardView{
		Period:  string(q.Period),
		Entries: []domain.RankedEntry{},
		Seq:     q.Seq,
	}

	now := s.now().In(loc)
	start, filtered := WindowStart(q.Period, now)
	if filtered {
		view.WindowStart = &start
	}

	entries, err := s.load(ctx, q.Period, now)
	if err != nil {
		s.logger.Warn("leaderboard query failed",
			zap.String("period", string(q.Period)),
			zap.String("tz", loc.String()),
			zap.Error(err),
		)
		return view
	}

	view.Entries = s.rank(entries)
	return view
}

// load consulta la ventana de now; now debe venir ya en la zona pedida.
func (s *LeaderboardService) load(ctx context.Context, period Period, now time.Time) ([]domain.LeaderboardEntry, error) {
	key := cacheKey(period, now)
	gen := ""
	if s.cache != nil {
		gen = s.cache.Generation(ctx)
		if cached, ok := s.cache.Get(ctx, key); ok {
			return cached, nil
		}
	}

	v, err, _ := s.group.Do(key+"@"+gen, func() (any, error) {
		qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), leaderboardQueryTimeout)
		defer cancel()

		start, filtered := WindowStart(period, now)
		var since *time.Time
		if filtered {
			since = &start
		}
		entries, err := s.repo.Top(qctx, since, s.opts.Limit)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			s.cache.Set(qctx, gen, key, entries, s.opts.CacheTTL)
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.LeaderboardEntry), nil
}

func (s *LeaderboardService) rank(entries []domain.LeaderboardEntry) []domain.RankedEntry {
	sorted := append([]domain.LeaderboardEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BeautyScore > sorted[j].BeautyScore
	})
	out := make([]domain.RankedEntry, 0, len(sorted))
	for i, e := range sorted {
		ranked := s.view(e)
		ranked.Rank = i + 1
		out = append(out, ranked)
	}
	return out
}

func (s *LeaderboardService) view(e domain.LeaderboardEntry) domain.RankedEntry {
	return domain.RankedEntry{
		ID:            e.ID,
		DisplayName:   ResolveDisplayName(e),
		Image:         ResolveAvatar(e, s.opts.DefaultAvatar),
		FallbackImage: s.opts.DefaultAvatar,
		BeautyScore:   e.BeautyScore,
		DisplayScore:  DisplayScore(e.BeautyScore),
		IsGuest:       e.IsGuest,
		CreatedAt:     e.CreatedAt,
	}
}

// Record guarda la entrada, invalida la caché y la publica en el feed.
func (s *LeaderboardService) Record(ctx context.Context, entry domain.LeaderboardEntry) (domain.LeaderboardEntry, error) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}
	if err := s.repo.Insert(ctx, entry); err != nil {
		return domain.LeaderboardEntry{}, err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	if s.publisher != nil {
		s.publisher.PublishEntry(s.view(entry))
	}
	return entry, nil
}

// Warm precarga la caché para todos los periodos en la zona por defecto.
func (s *LeaderboardService) Warm(ctx context.Context) {
	for _, p := range AllPeriods {
		if _, err := s.load(ctx, p, s.now().In(s.opts.Location)); err != nil {
			s.logger.Warn("leaderboard warm failed", zap.String("period", string(p)), zap.Error(err))
		}
	}
}

// cacheKey incluye la fecha local: al cambiar el día las ventanas today y month abren otra clave.
func cacheKey(period Period, now time.Time) string {
	return string(period) + "|" + now.Location().String() + "|" + now.Format("2006-01-02")
}
