// Package server exposes the analysis pipeline over HTTP: upload a
// transaction export, stream analysis progress as server-sent events, and
// submit category corrections. Sessions live in memory only.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Shirly8/sift/internal/agent"
	"github.com/Shirly8/sift/internal/cache"
	"github.com/Shirly8/sift/internal/common"
	"github.com/Shirly8/sift/internal/engine"
	"github.com/Shirly8/sift/internal/ingest"
	"github.com/Shirly8/sift/internal/llm"
	"github.com/Shirly8/sift/internal/model"
	"github.com/Shirly8/sift/internal/rules"
)

// MaxUploadBytes caps uploaded statement size.
const MaxUploadBytes = 10 << 20

// Config holds server wiring.
type Config struct {
	Addr         string
	AllowOrigins []string
	MaxSessions  int
	CostWarn     float64
	CostAbort    float64
	LLM          *llm.Config // nil disables the LLM fallback
}

// Server wires the categorization pipeline and orchestrator behind gin.
type Server struct {
	cfg    Config
	store  *SessionStore
	rules  *rules.Engine
	cache  *cache.Cache
	router *gin.Engine
	orch   *agent.Orchestrator
}

// New builds a server. The merchant cache is shared across sessions; rule
// table and cache are the only long-lived state.
func New(cfg Config, ruleEngine *rules.Engine, merchantCache *cache.Cache) *Server {
	if cfg.CostWarn <= 0 {
		cfg.CostWarn = llm.DefaultCostWarn
	}
	if cfg.CostAbort <= 0 {
		cfg.CostAbort = llm.DefaultCostAbort
	}
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = []string{"http://localhost:3000"}
	}

	s := &Server{
		cfg:   cfg,
		store: NewSessionStore(cfg.MaxSessions),
		rules: ruleEngine,
		cache: merchantCache,
		orch:  agent.NewOrchestrator(),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.AllowOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Content-Length", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
	}))

	router.GET("/api/health", s.health)
	router.POST("/api/upload", s.upload)
	router.GET("/api/analyze/:session", s.analyze)
	router.POST("/api/correct-category", s.correctCategory)

	s.router = router
	return s
}

// Router exposes the handler for tests and custom listeners.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves until the listener fails.
func (s *Server) Run() error {
	slog.Info("Server listening", "addr", s.cfg.Addr)
	return s.router.Run(s.cfg.Addr)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": s.store.Len(),
	})
}

// upload accepts a CSV or OFX statement, normalizes and dedupes it, and
// registers a session. Structural problems (missing columns, no usable
// rows) are fatal to the upload and reported immediately.
func (s *Server) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}
	defer func() { _ = file.Close() }()

	txns, err := ParseStatement(header.Filename, file)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, common.ErrMissingColumns) || errors.Is(err, common.ErrNoTransactions) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	quality, err := ingest.QualityScore(txns)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   err.Error(),
			"quality": quality,
		})
		return
	}

	session := s.store.Create(txns, quality)
	slog.Info("Session created",
		"session", session.ID,
		"transactions", len(txns),
		"quality", fmt.Sprintf("%.2f", quality))

	c.JSON(http.StatusOK, gin.H{
		"session_id":   session.ID,
		"transactions": len(txns),
		"quality":      quality,
	})
}

// analyze streams the full run as server-sent events: categorization,
// profiling, planning, tools, synthesis, then one terminal event with the
// result payload. A second concurrent call for the same session gets 409.
func (s *Server) analyze(c *gin.Context) {
	session, err := s.store.Get(c.Param("session"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err := session.StartRun(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	stream := agent.NewStream()

	// Background task owns the run; if the consumer disconnects the run
	// finishes and its events drain into the closed connection's buffer.
	go func() {
		defer session.FinishRun()
		s.runAnalysis(context.Background(), session, stream)
	}()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		event, ok := <-stream.Events()
		if !ok {
			return false
		}
		c.SSEvent("message", event)
		return !event.Done
	})
}

// runAnalysis categorizes the session's table and hands it to the
// orchestrator. Always finishes the stream, even on categorization failure.
func (s *Server) runAnalysis(ctx context.Context, session *Session, stream *agent.Stream) {
	txns := session.Snapshot()

	stream.Step("Categorizing transactions")
	categorized, summary, err := s.categorize(ctx, txns)
	if err != nil {
		slog.Error("Categorization failed", "session", session.ID, "error", err)
		stream.Finish(&model.AnalysisResult{
			Results:  map[model.ToolName]*model.ToolResult{},
			Insights: []model.Insight{},
		})
		return
	}
	session.SetTransactions(categorized)

	s.orch.Run(ctx, categorized, summary, stream)
}

func (s *Server) categorize(ctx context.Context, txns []model.Transaction) ([]model.Transaction, *model.CategorizationSummary, error) {
	governor := llm.NewGovernor(s.cfg.CostWarn, s.cfg.CostAbort)

	var fallback engine.Fallback
	if s.cfg.LLM != nil {
		client, err := llm.NewClient(*s.cfg.LLM)
		if err != nil {
			slog.Warn("LLM fallback unavailable", "error", err)
		} else {
			fallback = llm.NewCategorizer(client, governor, 60)
		}
	}

	eng := engine.New(s.rules, s.cache, fallback, governor)
	return eng.Categorize(ctx, txns)
}

// correctCategory records a user correction: the merchant's cache entry is
// pinned as user-verified and every matching transaction in the session is
// recategorized.
func (s *Server) correctCategory(c *gin.Context) {
	var req struct {
		SessionID string `json:"session_id" binding:"required"`
		Merchant  string `json:"merchant" binding:"required"`
		Category  string `json:"category" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	session, err := s.store.Get(req.SessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	merchant := ingest.NormalizeMerchant(req.Merchant)
	if err := s.cache.SaveUserCorrection(merchant, req.Category); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txns := session.Snapshot()
	updated := 0
	for i := range txns {
		if txns[i].NormalizedMerchant != merchant {
			continue
		}
		txns[i].Category = req.Category
		txns[i].Confidence = cache.UserVerifiedConfidence
		txns[i].Source = model.SourceCache
		updated++
	}
	session.SetTransactions(txns)

	slog.Info("Category corrected",
		"session", session.ID,
		"merchant", merchant,
		"category", req.Category,
		"transactions", updated)

	c.JSON(http.StatusOK, gin.H{"merchant": merchant, "updated": updated})
}

// ParseStatement reads a CSV or OFX export, normalizes merchants, drops
// duplicates and returns the table sorted by date.
func ParseStatement(filename string, r io.Reader) ([]model.Transaction, error) {
	var (
		txns []model.Transaction
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".ofx", ".qfx":
		txns, err = ingest.ReadOFX(r)
	default:
		txns, err = ingest.ReadCSV(r)
	}
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return nil, common.ErrNoTransactions
	}

	txns = ingest.Deduplicate(txns)
	ingest.SortByDate(txns)
	return txns, nil
}
