package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"beauty-api/internal/service"
)

type LeaderboardHandler struct {
	logger      *zap.Logger
	leaderboard *service.LeaderboardService
	live        http.Handler
}

// NewLeaderboardHandler recibe el hub en vivo como http.Handler; nil desactiva /leaderboard/live.
func NewLeaderboardHandler(logger *zap.Logger, leaderboard *service.LeaderboardService, live http.Handler) *LeaderboardHandler {
	return &LeaderboardHandler{logger: logger, leaderboard: leaderboard, live: live}
}

// Top maneja GET /leaderboard?period=&tz=&seq=.
func (h *LeaderboardHandler) Top(c *gin.Context) {
	period, err := service.ParsePeriod(c.Query("period"))
	if err != nil {
		respondError(c, h.logger, "leaderboard", err)
		return
	}

	var loc *time.Location
	if tz := c.Query("tz"); tz != "" {
		loc, err = time.LoadLocation(tz)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid time zone"})
			return
		}
	}

	view := h.leaderboard.Top(c.Request.Context(), service.LeaderboardQuery{
		Period:   period,
		Location: loc,
		Seq:      c.Query("seq"),
	})
	c.JSON(http.StatusOK, view)
}

// Live maneja GET /leaderboard/live (websocket).
func (h *LeaderboardHandler) Live(c *gin.Context) {
	if h.live == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "live feed disabled"})
		return
	}
	h.live.ServeHTTP(c.Writer, c.Request)
}
