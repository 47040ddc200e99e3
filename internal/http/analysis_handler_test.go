package http

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"beauty-api/internal/analyzer"
	"beauty-api/internal/domain"
	"beauty-api/internal/service"
)

var errTest = errors.New("boom")

func TestAnalyzeHandler_Success(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/analyze", map[string]any{"image": testPNG}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var report domain.AnalysisReport
	decode(t, rec, &report)
	if report.Standing.Percentile != 68 || report.Standing.DisplayScore != 62 {
		t.Fatalf("unexpected standing %+v", report.Standing)
	}
	if report.EntryID == "" || len(env.leaderboard.entries) != 1 {
		t.Fatalf("expected leaderboard entry to be recorded")
	}
	if env.leaderboard.entries[0].ImageData != "" {
		t.Fatalf("image must not be stored without share_image")
	}
}

func TestAnalyzeHandler_AttributesSignedInGuest(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/auth/guest", nil, nil)
	var session service.AuthSession
	decode(t, rec, &session)

	rec = env.do(http.MethodPost, "/analyze", map[string]any{"image": testPNG, "share_image": true}, bearer(session.Tokens.AccessToken))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	entry := env.leaderboard.entries[0]
	if entry.UserID != session.User.ID || !entry.IsGuest || entry.ImageData != testPNG {
		t.Fatalf("unexpected entry %+v", entry)
	}
}

func TestAnalyzeHandler_Failures(t *testing.T) {
	t.Run("face not detected", func(t *testing.T) {
		env := newTestEnv(t)
		env.client.Err = &analyzer.FaceDetectionError{Status: 400, Detail: "No face detected"}
		rec := env.do(http.MethodPost, "/analyze", map[string]any{"image": testPNG}, nil)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
		var body struct {
			Error string `json:"error"`
			Class string `json:"class"`
		}
		decode(t, rec, &body)
		if body.Class != string(service.ErrorClassFaceNotDetected) || body.Error == "" {
			t.Fatalf("unexpected body %+v", body)
		}
	})

	t.Run("backend down", func(t *testing.T) {
		env := newTestEnv(t)
		env.client.Err = analyzer.ErrBackendUnavailable
		rec := env.do(http.MethodPost, "/analyze", map[string]any{"image": testPNG}, nil)
		if rec.Code != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d", rec.Code)
		}
	})

	t.Run("invalid image", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(http.MethodPost, "/analyze", map[string]any{"image": "nope"}, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if env.client.Calls() != 0 {
			t.Fatalf("backend must not be called for invalid input")
		}
	})

	t.Run("missing body", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(http.MethodPost, "/analyze", map[string]any{}, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("rate limited", func(t *testing.T) {
		env := newTestEnv(t, func(d *RouterDeps) { d.AnalyzeLimiter = denyLimiter{} })
		rec := env.do(http.MethodPost, "/analyze", map[string]any{"image": testPNG}, nil)
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", rec.Code)
		}
	})
}

func TestAnalyzeHandler_RejectsOversizedBody(t *testing.T) {
	env := newTestEnv(t)
	huge := "data:image/png;base64," + strings.Repeat("A", int(imageBodyLimit(1<<20)))

	rec := env.do(http.MethodPost, "/analyze", map[string]any{"image": huge}, nil)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d: %s", rec.Code, rec.Body.String())
	}
	if env.client.Calls() != 0 {
		t.Fatalf("expected backend untouched, got %d calls", env.client.Calls())
	}

	session := signUp(t, env)
	rec = env.do(http.MethodPut, "/profile/photo", map[string]any{"image": huge}, bearer(session.Tokens.AccessToken))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 on photo upload, got %d", rec.Code)
	}
}

func TestImageBodyLimitCoversEncodedImage(t *testing.T) {
	if got := imageBodyLimit(3 << 20); got < 4<<20 {
		t.Fatalf("expected limit above base64 size of the image, got %d", got)
	}
}

func TestAnalyzeUploadHandler(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "selfie.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	// cabecera PNG para que DetectContentType la reconozca
	part.Write([]byte("\x89PNG\r\n\x1a\n0000"))
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/analyze/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if string(env.client.LastImage[:4]) != "\x89PNG" {
		t.Fatalf("expected uploaded bytes forwarded")
	}
}

func TestPercentileHandler(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/percentile?score=6.2", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Standing domain.Standing `json:"standing"`
		Verdict  string          `json:"verdict"`
	}
	decode(t, rec, &body)
	if body.Standing.Percentile != 68 || body.Verdict == "" {
		t.Fatalf("unexpected body %+v", body)
	}

	for _, q := range []string{"NaN", "Inf", "abc", ""} {
		rec := env.do(http.MethodGet, "/percentile?score="+q, nil, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("score=%q: expected 400, got %d", q, rec.Code)
		}
	}
}
