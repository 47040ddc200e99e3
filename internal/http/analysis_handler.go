package http

import (
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"beauty-api/internal/service"
)

// AnalysisHandler expone el análisis facial y la estimación de percentil.
type AnalysisHandler struct {
	logger        *zap.Logger
	analysis      *service.AnalysisService
	maxImageBytes int64
}

func NewAnalysisHandler(logger *zap.Logger, analysis *service.AnalysisService, maxImageBytes int64) *AnalysisHandler {
	if maxImageBytes <= 0 {
		maxImageBytes = 10 << 20
	}
	return &AnalysisHandler{logger: logger, analysis: analysis, maxImageBytes: maxImageBytes}
}

// Analyze maneja POST /analyze con la imagen como data URI.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req struct {
		Image      string `json:"image" binding:"required"`
		ShareImage bool   `json:"share_image"`
	}
	if err := bindImageJSON(c, h.maxImageBytes, &req); err != nil {
		bindFailed(c, h.logger, "analyze", err)
		return
	}

	h.run(c, service.AnalyzeInput{
		ImageDataURI: req.Image,
		ShareImage:   req.ShareImage,
		Submitter:    submitterFrom(c),
	})
}

// Upload maneja POST /analyze/upload con multipart (campo file).
func (h *AnalysisHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxImageBytes+1<<20)
	fh, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(c, h.logger, "analyze upload", service.ErrImageTooLarge)
			return
		}
		badRequest(c, h.logger, "analyze upload", err)
		return
	}
	if fh.Size > h.maxImageBytes {
		respondError(c, h.logger, "analyze upload", service.ErrImageTooLarge)
		return
	}

	f, err := fh.Open()
	if err != nil {
		badRequest(c, h.logger, "analyze upload", err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.maxImageBytes+1))
	if err != nil {
		badRequest(c, h.logger, "analyze upload", err)
		return
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	share, _ := strconv.ParseBool(c.PostForm("share_image"))

	h.run(c, service.AnalyzeInput{
		Image:       data,
		ContentType: contentType,
		Filename:    fh.Filename,
		ShareImage:  share,
		Submitter:   submitterFrom(c),
	})
}

func (h *AnalysisHandler) run(c *gin.Context, input service.AnalyzeInput) {
	report, err := h.analysis.Analyze(c.Request.Context(), input)
	if err != nil {
		var aerr *service.AnalysisError
		if errors.As(err, &aerr) {
			status := http.StatusBadGateway
			if aerr.Class == service.ErrorClassFaceNotDetected {
				status = http.StatusUnprocessableEntity
			}
			c.JSON(status, gin.H{"error": aerr.Message, "class": aerr.Class})
			return
		}
		respondError(c, h.logger, "analyze", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Percentile maneja GET /percentile?score=.
func (h *AnalysisHandler) Percentile(c *gin.Context) {
	score, err := strconv.ParseFloat(c.Query("score"), 64)
	if err != nil || math.IsNaN(score) || math.IsInf(score, 0) {
		c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrNonFiniteScore.Error()})
		return
	}
	standing, err := service.EstimateStanding(score)
	if err != nil {
		respondError(c, h.logger, "percentile", err)
		return
	}
	age, estimated := service.ExpectedAge(score, nil)
	c.JSON(http.StatusOK, gin.H{
		"standing":      standing,
		"verdict":       service.StandingVerdict(standing.Percentile),
		"expected_age":  age,
		"age_estimated": estimated,
	})
}

func submitterFrom(c *gin.Context) *service.Submitter {
	claims, ok := GetAuthClaims(c)
	if !ok {
		return nil
	}
	return &service.Submitter{
		UserID:      claims.UserID,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
		IsGuest:     claims.Guest,
	}
}
