package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"beauty-api/internal/analyzer"
	"beauty-api/internal/domain"
)

const defaultMaxImageBytes int64 = 10 << 20

var (
	ErrInvalidImage  = errors.New("invalid image")
	ErrImageTooLarge = errors.New("image too large")
)

// AnalysisError es la falla visible para el usuario: clase y mensaje ya elegido.
type AnalysisError struct {
	Class   ErrorClass
	Message string
	Cause   error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis failed (%s): %v", e.Class, e.Cause)
}

func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

// Submitter identifica a quien envía la foto; nil es un visitante sin sesión.
type Submitter struct {
	UserID      string
	Email       string
	DisplayName string
	IsGuest     bool
}

type AnalyzeInput struct {
	ImageDataURI string
	Image        []byte
	ContentType  string
	Filename     string
	Submitter    *Submitter
	ShareImage   bool
}

// LeaderboardRecorder persiste un resultado en el ranking.
type LeaderboardRecorder interface {
	Record(ctx context.Context, entry domain.LeaderboardEntry) (domain.LeaderboardEntry, error)
}

// AnalysisService orquesta el envío de la foto al backend y arma el reporte.
type AnalysisService struct {
	logger        *zap.Logger
	client        analyzer.Client
	messages      *MessageCatalog
	recorder      LeaderboardRecorder
	maxImageBytes int64
	now           func() time.Time
}

// NewAnalysisService construye el servicio; recorder nil desactiva el ranking.
func NewAnalysisService(logger *zap.Logger, client analyzer.Client, messages *MessageCatalog, recorder LeaderboardRecorder, maxImageBytes int64) *AnalysisService {
	if maxImageBytes <= 0 {
		maxImageBytes = defaultMaxImageBytes
	}
	return &AnalysisService{
		logger:        logger,
		client:        client,
		messages:      messages,
		recorder:      recorder,
		maxImageBytes: maxImageBytes,
		now:           time.Now,
	}
}

// Analyze hace exactamente una llamada al backend; no hay reintentos ni caché.
func (s *AnalysisService) Analyze(ctx context.Context, input AnalyzeInput) (domain.AnalysisReport, error) {
	image, contentType, err := s.resolveImage(input)
	if err != nil {
		return domain.AnalysisReport{}, err
	}

	resp, err := s.client.Analyze(ctx, image, input.Filename, contentType)
	if err != nil {
		return domain.AnalysisReport{}, s.classify(err)
	}

	result := MapAnalysis(resp)
	standing, err := EstimateStanding(result.BeautyScore)
	if err != nil {
		return domain.AnalysisReport{}, s.classify(err)
	}
	expectedAge, estimated := ExpectedAge(result.BeautyScore, result.Age)

	report := domain.AnalysisReport{
		Result:          result,
		Standing:        standing,
		Verdict:         StandingVerdict(standing.Percentile),
		ExpectedAge:     expectedAge,
		AgeEstimated:    estimated,
		ContractVersion: analyzer.ContractVersion,
		AnalyzedAt:      s.now().UTC(),
	}

	if s.recorder != nil {
		entry := s.buildEntry(input, image, contentType, result.BeautyScore, report.AnalyzedAt)
		saved, err := s.recorder.Record(ctx, entry)
		if err != nil {
			s.logger.Warn("leaderboard record failed", zap.Error(err), zap.String("user_id", entry.UserID))
		} else {
			report.EntryID = saved.ID
		}
	}

	return report, nil
}

func (s *AnalysisService) resolveImage(input AnalyzeInput) ([]byte, string, error) {
	image := input.Image
	contentType := strings.ToLower(strings.TrimSpace(input.ContentType))
	if input.ImageDataURI != "" {
		d, err := analyzer.DecodeDataURI(input.ImageDataURI)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
		image = d.Data
		contentType = d.MediaType
	}
	if len(image) == 0 {
		return nil, "", ErrInvalidImage
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", fmt.Errorf("%w: content type %q", ErrInvalidImage, contentType)
	}
	if int64(len(image)) > s.maxImageBytes {
		return nil, "", ErrImageTooLarge
	}
	return image, contentType, nil
}

func (s *AnalysisService) classify(err error) error {
	class := ErrorClassGeneric
	if errors.Is(err, analyzer.ErrFaceNotDetected) {
		class = ErrorClassFaceNotDetected
	}
	s.logger.Warn("analysis failed", zap.String("class", string(class)), zap.Error(err))
	return &AnalysisError{Class: class, Message: s.messages.Message(class), Cause: err}
}

func (s *AnalysisService) buildEntry(input AnalyzeInput, image []byte, contentType string, score float64, at time.Time) domain.LeaderboardEntry {
	entry := domain.LeaderboardEntry{
		ID:          uuid.NewString(),
		BeautyScore: score,
		CreatedAt:   at,
	}
	if sub := input.Submitter; sub != nil {
		entry.UserID = sub.UserID
		entry.UserEmail = sub.Email
		entry.UserDisplayName = sub.DisplayName
		entry.IsGuest = sub.IsGuest
	}
	if input.ShareImage {
		if input.ImageDataURI != "" {
			entry.ImageData = input.ImageDataURI
		} else {
			entry.ImageData = "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(image)
		}
	}
	return entry
}
