package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	LocalBaseURL    = "http://localhost:8000"
	DefaultFilename = "image.jpg"
)

// Client define las operaciones contra el backend de análisis facial.
type Client interface {
	Analyze(ctx context.Context, image []byte, filename, contentType string) (AnalyzeResponseV1, error)
	Health(ctx context.Context) (HealthStatus, error)
	Celebrities(ctx context.Context) (CelebrityList, error)
	CSVStats(ctx context.Context) (CSVStats, error)
	ReloadCelebrities(ctx context.Context) (ReloadResult, error)
}

// ResolveBaseURL elige la URL del backend: variable explícita, host público o local.
func ResolveBaseURL(envURL, publicHost, deployedURL string) string {
	if u := strings.TrimSpace(envURL); u != "" {
		return strings.TrimRight(u, "/")
	}
	host := strings.ToLower(strings.TrimSpace(publicHost))
	if host != "" && host != "localhost" {
		return strings.TrimRight(deployedURL, "/")
	}
	return LocalBaseURL
}

// HTTPClient implementa Client sobre la API HTTP del backend. No reintenta.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPClient construye un cliente con el timeout indicado.
func NewHTTPClient(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	if baseURL == "" {
		baseURL = LocalBaseURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

func (c *HTTPClient) Analyze(ctx context.Context, image []byte, filename, contentType string) (AnalyzeResponseV1, error) {
	if filename == "" {
		filename = DefaultFilename
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return AnalyzeResponseV1{}, fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return AnalyzeResponseV1{}, fmt.Errorf("write multipart part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return AnalyzeResponseV1{}, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze/", &body)
	if err != nil {
		return AnalyzeResponseV1{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	respBody, err := c.do(req)
	if err != nil {
		return AnalyzeResponseV1{}, err
	}

	if err := ValidateAnalyzeResponse(respBody); err != nil {
		c.logger.Warn("analysis response rejected", zap.Error(err))
		return AnalyzeResponseV1{}, err
	}

	var out AnalyzeResponseV1
	if err := json.Unmarshal(respBody, &out); err != nil {
		return AnalyzeResponseV1{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return out, nil
}

func (c *HTTPClient) Health(ctx context.Context) (HealthStatus, error) {
	var out HealthStatus
	err := c.getJSON(ctx, http.MethodGet, "/health", &out)
	return out, err
}

func (c *HTTPClient) Celebrities(ctx context.Context) (CelebrityList, error) {
	var out CelebrityList
	err := c.getJSON(ctx, http.MethodGet, "/celebrities/", &out)
	return out, err
}

func (c *HTTPClient) CSVStats(ctx context.Context) (CSVStats, error) {
	var out CSVStats
	err := c.getJSON(ctx, http.MethodGet, "/csv-stats/", &out)
	return out, err
}

func (c *HTTPClient) ReloadCelebrities(ctx context.Context) (ReloadResult, error) {
	var out ReloadResult
	err := c.getJSON(ctx, http.MethodPost, "/reload-celebrities/", &out)
	return out, err
}

func (c *HTTPClient) getJSON(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	body, err := c.do(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func (c *HTTPClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("analysis backend error",
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode),
		)
		if detail := extractDetail(respBody); detail != "" {
			return nil, &FaceDetectionError{Status: resp.StatusCode, Detail: detail}
		}
		return nil, fmt.Errorf("%w: status=%d", ErrBackendUnavailable, resp.StatusCode)
	}
	return respBody, nil
}

// extractDetail devuelve detail solo cuando es un string no vacío.
func extractDetail(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	s, ok := eb.Detail.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}
