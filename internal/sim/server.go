package sim

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gridpilot/gridpilot/internal/grid"
	"github.com/gridpilot/gridpilot/internal/protocol/planstream"
)

// Option adjusts the server.
type Option func(*apiServer)

// WithStepDelay sets the pause between emitted frames. Zero disables
// pacing; the default mimics a thinking backend.
func WithStepDelay(d time.Duration) Option {
	return func(api *apiServer) {
		api.stepDelay = d
	}
}

// WithAPIKey requires X-Gridpilot-API-Key on every request.
func WithAPIKey(key string) Option {
	return func(api *apiServer) {
		api.apiKey = key
	}
}

// New constructs the HTTP handler for the scripted backend.
func New(logger *slog.Logger, opts ...Option) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger))

	api := &apiServer{logger: logger, stepDelay: 40 * time.Millisecond}
	for _, opt := range opts {
		opt(api)
	}
	if api.apiKey != "" {
		r.Use(apiKeyMiddleware(api.apiKey))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/plan", api.plan)

	return r
}

type apiServer struct {
	logger    *slog.Logger
	stepDelay time.Duration
	apiKey    string
}

// plan validates the request and streams the scripted run as
// event-stream frames. Error bodies are plain text: the client surfaces
// them verbatim.
func (api *apiServer) plan(c *gin.Context) {
	var req planstream.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Instruction == "" {
		c.String(http.StatusUnprocessableEntity, "instruction required")
		return
	}
	goal := grid.Coord{X: req.Goal[0], Y: req.Goal[1]}
	if !goal.InBounds() {
		c.String(http.StatusUnprocessableEntity, fmt.Sprintf("goal %v is off the grid", req.Goal))
		return
	}
	start := grid.Origin
	if req.Start != nil {
		start = grid.Coord{X: req.Start[0], Y: req.Start[1]}
		if !start.InBounds() {
			c.String(http.StatusUnprocessableEntity, fmt.Sprintf("start %v is off the grid", *req.Start))
			return
		}
	}
	blocked := make([]grid.Coord, 0, len(req.Blocked))
	for _, pair := range req.Blocked {
		blocked = append(blocked, grid.Coord{X: pair[0], Y: pair[1]})
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.String(http.StatusInternalServerError, "streaming unsupported")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	flusher.Flush()

	walk := Run(req.Instruction, start, goal, blocked)
	api.logger.Info("run scripted",
		"run_id", req.RunID,
		"steps", len(walk.Steps),
		"success", walk.Success,
	)

	ctx := c.Request.Context()
	emit := func(event string, payload any) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			api.logger.Error("encode frame", "event", event, "error", err)
			return false
		}
		fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, raw)
		flusher.Flush()
		if api.stepDelay > 0 {
			time.Sleep(api.stepDelay)
		}
		return true
	}

	if !emit(planstream.EventPlan, planstream.Plan{Plan: walk.Plan, Notes: walk.Notes}) {
		return
	}
	for _, step := range walk.Steps {
		if !emit(planstream.EventStep, step) {
			return
		}
	}
	if walk.Success {
		if !emit(planstream.EventDone, nil) {
			return
		}
	} else {
		if !emit(planstream.EventBlocked, planstream.Blocked{Reason: walk.Reason}) {
			return
		}
	}
	emit(planstream.EventStats, walk.Stats(req.RunID, start, goal))
}

// requestLogger adapts slog to Gin's middleware interface. The sim only
// ever serves loopback traffic, so method, path, status, and duration
// are all that is worth recording.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}

func apiKeyMiddleware(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Next()
			return
		}
		if c.GetHeader("X-Gridpilot-API-Key") != expected {
			c.String(http.StatusUnauthorized, "invalid api key")
			c.Abort()
			return
		}
		c.Next()
	}
}
