package http

import (
	"net/http"
	"testing"
	"time"

	"beauty-api/internal/domain"
)

func TestLeaderboardHandlerTop(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now().UTC()
	env.leaderboard.entries = []domain.LeaderboardEntry{
		{ID: "old", BeautyScore: 9.9, UserDisplayName: "Old", CreatedAt: now.AddDate(0, -2, 0)},
		{ID: "a", BeautyScore: 6.1, UserEmail: "ana@example.com", CreatedAt: now},
		{ID: "b", BeautyScore: 8.4, UserDisplayName: "Bo", CreatedAt: now},
	}

	rec := env.do(http.MethodGet, "/leaderboard?period=week&seq=7&tz=UTC", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var view domain.LeaderboardView
	decode(t, rec, &view)
	if view.Seq != "7" || view.Period != "week" || view.WindowStart == nil {
		t.Fatalf("unexpected view header %+v", view)
	}
	if len(view.Entries) != 2 || view.Entries[0].ID != "b" || view.Entries[1].DisplayName != "ana" {
		t.Fatalf("unexpected entries %+v", view.Entries)
	}

	rec = env.do(http.MethodGet, "/leaderboard?period=entire", nil, nil)
	decode(t, rec, &view)
	if len(view.Entries) != 3 || view.WindowStart != nil {
		t.Fatalf("expected unfiltered list, got %+v", view)
	}
}

func TestLeaderboardHandlerErrors(t *testing.T) {
	env := newTestEnv(t)

	if rec := env.do(http.MethodGet, "/leaderboard?period=year", nil, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown period, got %d", rec.Code)
	}
	if rec := env.do(http.MethodGet, "/leaderboard?tz=Mars/Olympus", nil, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown tz, got %d", rec.Code)
	}

	env.leaderboard.err = errTest
	rec := env.do(http.MethodGet, "/leaderboard?period=month", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("query failures are swallowed, expected 200, got %d", rec.Code)
	}
	var view domain.LeaderboardView
	decode(t, rec, &view)
	if view.Entries == nil || len(view.Entries) != 0 {
		t.Fatalf("expected empty list, got %+v", view.Entries)
	}

	if rec := env.do(http.MethodGet, "/leaderboard/live", nil, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without live hub, got %d", rec.Code)
	}
}
