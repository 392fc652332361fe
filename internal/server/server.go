package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/agenthands/matchpredict/internal/session"
	"github.com/agenthands/matchpredict/internal/workflow"
)

type Server struct {
	Sessions  *session.Registry[string]
	Predictor workflow.Predictor
	logger    zerolog.Logger
}

func NewServer(predictor workflow.Predictor, sessionTTL time.Duration, logger zerolog.Logger) *Server {
	s := &Server{
		Predictor: predictor,
		logger:    logger.With().Str("component", "http_server").Logger(),
	}
	s.Sessions = session.NewRegistry[string](s.newWorkflow, sessionTTL)
	return s
}

func (s *Server) newWorkflow() *workflow.Workflow {
	return workflow.New(s.Predictor, workflow.WithLogger(s.logger))
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/predictions", s.Predict)

	sessions := r.Group("/sessions")
	sessions.POST("", s.CreateSession)
	sessions.GET("/:id", s.GetSession)
	sessions.PUT("/:id/teams", s.SetTeams)
	sessions.POST("/:id/submit", s.Submit)
	sessions.POST("/:id/reset", s.Reset)
	sessions.DELETE("/:id", s.DeleteSession)

	return r
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("HTTP request")
	}
}

type TeamsRequest struct {
	TeamA *string `json:"team_a"`
	TeamB *string `json:"team_b"`
}

func (r TeamsRequest) apply(w *workflow.Workflow) {
	if r.TeamA != nil {
		w.SetTeamA(*r.TeamA)
	}
	if r.TeamB != nil {
		w.SetTeamB(*r.TeamB)
	}
}

type SessionResponse struct {
	ID string `json:"id"`
	workflow.Snapshot
}

func (s *Server) CreateSession(c *gin.Context) {
	var req TeamsRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
	}

	id := uuid.New().String()
	w := s.Sessions.GetOrCreate(id)
	req.apply(w)

	c.JSON(http.StatusCreated, SessionResponse{ID: id, Snapshot: w.Snapshot()})
}

func (s *Server) lookup(c *gin.Context) (*workflow.Workflow, bool) {
	w, ok := s.Sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	}
	return w, ok
}

func (s *Server) GetSession(c *gin.Context) {
	w, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, SessionResponse{ID: c.Param("id"), Snapshot: w.Snapshot()})
}

func (s *Server) SetTeams(c *gin.Context) {
	w, ok := s.lookup(c)
	if !ok {
		return
	}

	var req TeamsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	req.apply(w)

	c.JSON(http.StatusOK, SessionResponse{ID: c.Param("id"), Snapshot: w.Snapshot()})
}

// Submit answers 202 once the session is Loading, 422 when input
// validation kept it Idle and 409 when a call was already in flight. With
// ?wait=true it blocks until the call settles and answers 200.
func (s *Server) Submit(c *gin.Context) {
	w, ok := s.lookup(c)
	if !ok {
		return
	}
	id := c.Param("id")

	done, started := w.Submit(c.Request.Context())
	snap := w.Snapshot()
	if !started {
		status := http.StatusConflict
		if snap.Phase == workflow.PhaseIdle {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, SessionResponse{ID: id, Snapshot: snap})
		return
	}

	if c.Query("wait") == "true" {
		select {
		case <-done:
			c.JSON(http.StatusOK, SessionResponse{ID: id, Snapshot: w.Snapshot()})
		case <-c.Request.Context().Done():
		}
		return
	}

	c.JSON(http.StatusAccepted, SessionResponse{ID: id, Snapshot: snap})
}

func (s *Server) Reset(c *gin.Context) {
	w, ok := s.lookup(c)
	if !ok {
		return
	}
	id := c.Param("id")

	if !w.Reset() {
		c.JSON(http.StatusConflict, SessionResponse{ID: id, Snapshot: w.Snapshot()})
		return
	}
	c.JSON(http.StatusOK, SessionResponse{ID: id, Snapshot: w.Snapshot()})
}

func (s *Server) DeleteSession(c *gin.Context) {
	if !s.Sessions.Delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

type PredictRequest struct {
	TeamA string `json:"team_a"`
	TeamB string `json:"team_b"`
}

// Predict runs a one-off workflow to completion.
func (s *Server) Predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	w := s.newWorkflow()
	w.SetTeams(req.TeamA, req.TeamB)

	done, _ := w.Submit(c.Request.Context())
	select {
	case <-done:
	case <-c.Request.Context().Done():
		return
	}

	snap := w.Snapshot()
	switch snap.Phase {
	case workflow.PhaseIdle:
		c.JSON(http.StatusUnprocessableEntity, snap)
	case workflow.PhaseError:
		c.JSON(http.StatusBadGateway, snap)
	default:
		c.JSON(http.StatusOK, snap)
	}
}
