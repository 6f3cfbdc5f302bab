package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"bitbucket.org/claimlens/estimates_backend/appctx"
	"bitbucket.org/claimlens/estimates_backend/config"
	"bitbucket.org/claimlens/estimates_backend/models"
	"bitbucket.org/claimlens/estimates_backend/utils"
	"bitbucket.org/claimlens/estimates_backend/workflow"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const defaultPort = "8080"

var tracer = otel.Tracer("estimates-backend")

// RateLimiter is a fixed-window, per-client-IP limiter backed by Redis.
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		// Cloud Run standard env var.
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// Shutdown coordination.
	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	pipeline := workflow.NewAnalysisPipeline(logger, config.ExtraGuardrailPhrases())

	r := gin.New()
	// Request IDs: generate once per request and attach to context.
	r.Use(func(c *gin.Context) {
		rid := c.GetHeader("x-request-id")
		if rid == "" {
			rid = uuid.NewString()
		}
		ctx := appctx.Set(c.Request.Context(), appctx.ContextKeyRequestId, rid)
		ctx = appctx.Set(ctx, appctx.ContextKeyClientIp, c.ClientIP())
		c.Request = c.Request.WithContext(ctx)
		c.Header("x-request-id", rid)
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	// Production-safe CORS:
	// - In production, require explicit allowlist via CORS_ALLOWED_ORIGINS (comma-separated).
	// - In non-production, allow all (developer convenience).
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			// Safer default: deny all if not configured in production.
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization", "x-request-id")
	corsConfig.AddExposeHeaders("Content-Length")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	// Optional rate limiting (recommended for production).
	// Env:
	// - RATE_LIMIT_ENABLED=true
	// - RATE_LIMIT_WINDOW_SECONDS=60
	// - RATE_LIMIT_MAX_REQUESTS=600
	if strings.EqualFold(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")), "true") {
		limit := int64(600)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_MAX_REQUESTS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				limit = n
			}
		}
		windowSec := int64(60)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_WINDOW_SECONDS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				windowSec = n
			}
		}
		rateLimiter := NewRateLimiter(limit, time.Duration(windowSec)*time.Second)
		r.Use(rateLimiter.RateLimitMiddleware)
	}

	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	r.POST("/api/v1/analyze", analyzeHandler(pipeline))
	r.POST("/api/v1/analyze/excel", analyzeExcelHandler(pipeline))
	r.POST("/api/v1/rescan", rescanHandler(pipeline))
	r.GET("/api/v1/trades", tradesHandler)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	// Start listening immediately (Cloud Run startup probe is TCP based).
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect Redis after the port is open; the limiter treats a missing
	// client as disabled until then.
	if strings.EqualFold(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")), "true") {
		config.ConnectRedisWithRetry()
	}

	logger.WithFields(logrus.Fields{
		"port": port,
	}).Info("estimate analysis API listening")

	// Block until shutdown or server error.
	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	// Drain HTTP requests.
	shutdownTimeout := 30 * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	// Close Redis (best-effort).
	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}

func analyzeHandler(pipeline *workflow.AnalysisPipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AnalysisRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			var ve validator.ValidationErrors
			if errors.As(err, &ve) {
				c.JSON(http.StatusBadRequest, gin.H{"validationErrors": utils.ProcessValidationErrors(err)})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		runAnalysis(c, pipeline, req)
	}
}

// analyzeExcelHandler accepts an .xlsx estimate export as a multipart upload,
// flattens it to text, and runs the same pipeline as pasted text.
func analyzeExcelHandler(pipeline *workflow.AnalysisPipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing multipart field: file"})
			return
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file type: only .xlsx files are allowed"})
			return
		}
		f, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
			return
		}
		defer f.Close()

		text, err := utils.FlattenXlsxToText(f)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}

		runAnalysis(c, pipeline, models.AnalysisRequest{
			EstimateText: text,
			UserInput:    c.PostForm("userInput"),
			LossType:     c.PostForm("lossType"),
			DamageType:   c.PostForm("damageType"),
		})
	}
}

func runAnalysis(c *gin.Context, pipeline *workflow.AnalysisPipeline, req models.AnalysisRequest) {
	ctx, span := tracer.Start(c.Request.Context(), "analysis.pipeline",
		trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()

	result, rejection := pipeline.Run(ctx, req)
	if rejection != nil {
		// Too-short input is a malformed request; guardrail and confidence
		// rejections are well-formed requests the pipeline declined.
		status := http.StatusUnprocessableEntity
		if errors.Is(workflow.RejectionError(rejection), utils.ErrorInputTooShort) {
			status = http.StatusBadRequest
		}
		c.JSON(status, rejection)
		return
	}
	c.JSON(http.StatusOK, result)
}

// rescanHandler applies the output guardrail to narrative text derived from
// findings before an integrator shows it to an end user.
func rescanHandler(pipeline *workflow.AnalysisPipeline) gin.HandlerFunc {
	type rescanRequest struct {
		Narrative string `json:"narrative" binding:"required"`
	}
	return func(c *gin.Context) {
		var req rescanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			var ve validator.ValidationErrors
			if errors.As(err, &ve) {
				c.JSON(http.StatusBadRequest, gin.H{"validationErrors": utils.ProcessValidationErrors(err)})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		c.JSON(http.StatusOK, pipeline.RescanOutput(req.Narrative))
	}
}

func tradesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version": models.TradeTaxonomyVersion,
		"trades":  models.AllTrades(),
	})
}

// customErrorLogger is a custom Gin middleware that logs only errors
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only log when there are errors
		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NewRateLimiter builds a limiter over the shared Redis client. The client
// may connect after startup; until then requests pass through.
func NewRateLimiter(limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{limit: limit, window: window}
}

// RateLimitMiddleware enforces the fixed window per client IP.
func (rl *RateLimiter) RateLimitMiddleware(c *gin.Context) {
	if rl.client == nil {
		rl.client = config.GetRedisDB()
	}
	if rl.client == nil {
		c.Next()
		return
	}

	key := "ratelimit:" + c.ClientIP()
	count, err := config.IncrRedisCounter(c.Request.Context(), key, rl.window)
	if err != nil {
		// Fail open: the limiter protects capacity, it is not an auth gate.
		c.Next()
		return
	}
	if count > rl.limit {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
		return
	}
	c.Next()
}
