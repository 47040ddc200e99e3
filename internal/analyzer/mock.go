package analyzer

import (
	"context"
	"sync"
)

// MockClient permite tests sin llamar al backend real.
type MockClient struct {
	mu sync.Mutex

	Response    AnalyzeResponseV1
	Err         error
	HealthResp  HealthStatus
	HealthErr   error
	CelebResp   CelebrityList
	CelebErr    error
	StatsResp   CSVStats
	StatsErr    error
	ReloadResp  ReloadResult
	ReloadErr   error
	AnalyzeHits int
	LastImage   []byte
}

func (m *MockClient) Analyze(ctx context.Context, image []byte, filename, contentType string) (AnalyzeResponseV1, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AnalyzeHits++
	m.LastImage = image
	return m.Response, m.Err
}

func (m *MockClient) Health(ctx context.Context) (HealthStatus, error) {
	return m.HealthResp, m.HealthErr
}

func (m *MockClient) Celebrities(ctx context.Context) (CelebrityList, error) {
	return m.CelebResp, m.CelebErr
}

func (m *MockClient) CSVStats(ctx context.Context) (CSVStats, error) {
	return m.StatsResp, m.StatsErr
}

func (m *MockClient) ReloadCelebrities(ctx context.Context) (ReloadResult, error) {
	return m.ReloadResp, m.ReloadErr
}

func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.AnalyzeHits
}
