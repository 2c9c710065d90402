package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/derslik/derslik-backend/internal/config"
	"github.com/derslik/derslik-backend/internal/middleware"
	"github.com/derslik/derslik-backend/internal/service"
	ws "github.com/derslik/derslik-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// ResultsHandler streams live submission results to monitoring teachers over
// WebSocket, fed from the Redis results channel the submission service
// publishes on.
type ResultsHandler struct {
	rdb         *redis.Client
	examService *service.ExamService
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

// NewResultsHandler creates a new ResultsHandler.
func NewResultsHandler(rdb *redis.Client, examService *service.ExamService, log zerolog.Logger, allowedOrigins []string) *ResultsHandler {
	return &ResultsHandler{
		rdb:         rdb,
		examService: examService,
		log:         log.With().Str("component", "results_handler").Logger(),
		upgrader:    buildUpgrader(allowedOrigins),
	}
}

// StreamResults godoc
// WS /ws/v1/exams/:examId/results?token=...
// Upgrades to WebSocket and forwards every submission result of the exam as
// it happens. Teacher/admin only.
func (h *ResultsHandler) StreamResults(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil || !claims.Role.Privileged() {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	id, ok := examID(c)
	if !ok {
		return
	}

	if _, err := h.examService.Get(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "exam not found"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Int("user_id", claims.UserID).
		Str("exam_id", id.String()).
		Logger()
	wsLog.Info().Msg("Monitor connected")

	ctx := c.Request.Context()
	sub := h.rdb.Subscribe(ctx, config.CacheKey.ExamResultsChannel(id.String()))
	defer sub.Close()

	// Reader drains client frames and forwards actions to the main loop,
	// which is the only goroutine writing to the connection. Any read error
	// tears the stream down.
	done := make(chan struct{})
	actions := make(chan ws.Action, 8)
	go func() {
		defer close(done)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				return
			}
			select {
			case actions <- msg.Action:
			default:
				// Pings are advisory; drop when the writer is backed up.
			}
		}
	}()

	ch := sub.Channel()
	for {
		select {
		case <-done:
			wsLog.Info().Msg("Monitor disconnected")
			return
		case <-ctx.Done():
			return
		case action := <-actions:
			var err error
			if action == ws.ActionPing {
				err = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
			} else {
				err = ws.WriteError(conn, "unsupported action")
			}
			if err != nil {
				wsLog.Debug().Err(err).Msg("Write failed, closing stream")
				return
			}
		case m, open := <-ch:
			if !open {
				wsLog.Warn().Msg("Results channel closed")
				return
			}
			event := ws.ResultEvent{
				Event:   ws.EventResult,
				Payload: json.RawMessage(m.Payload),
			}
			if err := ws.WriteTyped(conn, event); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed, closing stream")
				return
			}
		}
	}
}
