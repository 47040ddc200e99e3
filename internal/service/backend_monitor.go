package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"beauty-api/internal/analyzer"
)

// BackendSnapshot es el último estado conocido del backend de análisis.
type BackendSnapshot struct {
	BaseURL        string    `json:"base_url"`
	Healthy        bool      `json:"healthy"`
	Status         string    `json:"status"`
	CelebrityCount int       `json:"celebrity_count"`
	CSVRecords     int       `json:"csv_records"`
	Error          string    `json:"error,omitempty"`
	LatencyMS      int64     `json:"latency_ms"`
	CheckedAt      time.Time `json:"checked_at"`
}

type BackendMonitor struct {
	logger  *zap.Logger
	client  analyzer.Client
	baseURL string
	timeout time.Duration

	mu   sync.RWMutex
	last BackendSnapshot
	now  func() time.Time
}

func NewBackendMonitor(logger *zap.Logger, client analyzer.Client, baseURL string) *BackendMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackendMonitor{
		logger:  logger,
		client:  client,
		baseURL: baseURL,
		timeout: 10 * time.Second,
		last:    BackendSnapshot{BaseURL: baseURL, Status: "unknown"},
		now:     time.Now,
	}
}

// Snapshot devuelve el último resultado sin llamar al backend.
func (m *BackendMonitor) Snapshot() BackendSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

// Probe consulta salud, celebridades y CSV en paralelo. Si la salud falla se cancela el resto.
func (m *BackendMonitor) Probe(ctx context.Context) BackendSnapshot {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := m.now()
	snap := BackendSnapshot{BaseURL: m.baseURL}
	var (
		health analyzer.HealthStatus
		celebs analyzer.CelebrityList
		stats  analyzer.CSVStats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		health, err = m.client.Health(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		if celebs, err = m.client.Celebrities(gctx); err != nil {
			m.logger.Debug("celebrity list probe failed", zap.Error(err))
			celebs = analyzer.CelebrityList{}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if stats, err = m.client.CSVStats(gctx); err != nil {
			m.logger.Debug("csv stats probe failed", zap.Error(err))
			stats = analyzer.CSVStats{}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		snap.Status = "unavailable"
		snap.Error = err.Error()
		m.logger.Warn("analysis backend unhealthy", zap.String("base_url", m.baseURL), zap.Error(err))
	} else {
		snap.Healthy = true
		snap.Status = health.Status
		snap.CelebrityCount = celebs.Count
		snap.CSVRecords = stats.TotalRecords
	}
	snap.CheckedAt = m.now().UTC()
	snap.LatencyMS = snap.CheckedAt.Sub(start.UTC()).Milliseconds()

	m.mu.Lock()
	m.last = snap
	m.mu.Unlock()
	return snap
}
