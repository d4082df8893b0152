package http

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/netsession/internal/api/middleware"
	"github.com/GriffinCanCode/netsession/internal/domain/session"
	"github.com/GriffinCanCode/netsession/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/netsession/internal/io/archive"
	"github.com/GriffinCanCode/netsession/internal/shared/paths"
	"github.com/GriffinCanCode/netsession/internal/shared/utils"
)

// Version is reported by the root endpoint
const Version = "1.0.0"

// Handlers contains all HTTP handlers
type Handlers struct {
	service *session.Service
	manager *session.Manager
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// NewHandlers creates a new handler set. metrics may be nil.
func NewHandlers(service *session.Service, metrics *monitoring.Metrics, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		service: service,
		manager: service.Manager(),
		metrics: metrics,
		logger:  logger,
	}
}

// SaveRequest is the body of POST /session/save
type SaveRequest struct {
	Path string `json:"path" binding:"required"`
}

// OpenRequest is the body of POST /session/open. Exactly one of Path and
// URL must be set.
type OpenRequest struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "netsession",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	resp := gin.H{
		"status":    "healthy",
		"session":   h.manager.Stats(),
		"workspace": h.manager.Registries().Stats(),
	}
	if h.metrics != nil {
		resp["uptime_seconds"] = h.metrics.Snapshot().UptimeSeconds
	}
	c.JSON(http.StatusOK, resp)
}

// GetSession describes the tracked session
func (h *Handlers) GetSession(c *gin.Context) {
	resp := gin.H{
		"state":     h.manager.State(),
		"stats":     h.manager.Stats(),
		"workspace": h.manager.Registries().Stats(),
	}
	if sid := h.manager.SessionID(); sid != "" {
		resp["session_id"] = sid
	}
	if current := h.manager.CurrentSession(); current != nil {
		meta := current.ToMetadata()
		meta.FileName = h.manager.CurrentFileName()
		resp["metadata"] = meta
	}
	c.JSON(http.StatusOK, resp)
}

// NewSession discards the workspace and starts an empty session
func (h *Handlers) NewSession(c *gin.Context) {
	model, err := h.service.New(c.Request.Context())
	if err != nil {
		h.fail(c, "new", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": h.manager.SessionID(),
		"metadata":   model.ToMetadata(),
	})
}

// SaveSession writes the workspace to an archive
func (h *Handlers) SaveSession(c *gin.Context) {
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}
	if err := utils.ValidateSessionPath(req.Path, paths.Extension); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	report, err := h.service.Save(c.Request.Context(), req.Path, nil)
	if err != nil {
		h.fail(c, "save", err)
		return
	}

	c.Header("X-Session-Digest", report.Algorithm+":"+report.Digest)
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"path":        h.manager.CurrentFileName(),
		"session_dir": report.SessionDir,
		"entries":     len(report.Entries),
		"skipped":     report.Skipped,
		"bytes":       report.Bytes,
		"digest":      report.Digest,
		"algorithm":   report.Algorithm,
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

// OpenSession replaces the workspace with an archive from disk or a URL
func (h *Handlers) OpenSession(c *gin.Context) {
	var req OpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if (req.Path == "") == (req.URL == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "exactly one of path and url is required"})
		return
	}

	var (
		result *archive.ReadResult
		err    error
	)
	if req.URL != "" {
		if verr := utils.ValidateURL(req.URL); verr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
			return
		}
		result, err = h.service.OpenURL(c.Request.Context(), req.URL, nil)
	} else {
		if verr := utils.ValidateSessionPath(req.Path, ""); verr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
			return
		}
		result, err = h.service.Open(c.Request.Context(), req.Path, nil)
	}
	if err != nil {
		h.fail(c, "open", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": h.manager.SessionID(),
		"file_name":  h.manager.CurrentFileName(),
		"version":    result.Version,
		"metadata":   result.Session.ToMetadata(),
	})
}

// fail maps a session error to a status code
func (h *Handlers) fail(c *gin.Context, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrOutsideBaseDir):
		status = http.StatusBadRequest
	case errors.Is(err, fs.ErrNotExist):
		status = http.StatusNotFound
	case errors.Is(err, archive.ErrNotSessionArchive),
		errors.Is(err, archive.ErrMissingVersion),
		errors.Is(err, session.ErrInvalidModel):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrFetchFailed):
		status = http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusRequestTimeout
	}

	fields := []zap.Field{
		zap.String("operation", op),
		zap.String("request_id", c.GetString(middleware.RequestIDKey)),
		zap.Error(err),
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("Session operation failed", fields...)
	} else {
		h.logger.Warn("Session operation rejected", fields...)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
