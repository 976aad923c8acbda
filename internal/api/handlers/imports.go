package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"catalogsync/internal/importer"
	"catalogsync/internal/logger"
	"catalogsync/internal/repository"

	"github.com/gin-gonic/gin"
)

// FeedRunner runs a feed file through the importer.
type FeedRunner interface {
	RunFile(ctx context.Context, path string) (importer.Summary, error)
}

type ImportHandler struct {
	runner   FeedRunner
	runs     repository.RunRepository
	feedPath string
	logger   *logger.Logger

	// running allows one import per process.
	running sync.Mutex
}

func NewImportHandler(runner FeedRunner, runs repository.RunRepository, feedPath string, logger *logger.Logger) *ImportHandler {
	return &ImportHandler{
		runner:   runner,
		runs:     runs,
		feedPath: feedPath,
		logger:   logger,
	}
}

// Start runs the configured feed and returns its summary.
func (h *ImportHandler) Start(c *gin.Context) {
	if !h.running.TryLock() {
		c.JSON(http.StatusConflict, gin.H{"error": "An import is already running"})
		return
	}
	defer h.running.Unlock()

	h.logger.Info("Import requested for %s", h.feedPath)

	// the run continues after the client disconnects
	summary, err := h.runner.RunFile(context.WithoutCancel(c.Request.Context()), h.feedPath)
	if err != nil {
		status := http.StatusInternalServerError
		if importer.IsFatal(err) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error(), "data": summary})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

func (h *ImportHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > maxPageSize {
		limit = 20
	}

	runs, err := h.runs.List(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list import runs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch import runs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": runs})
}

func (h *ImportHandler) Get(c *gin.Context) {
	run, err := h.runs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Import run not found"})
			return
		}
		h.logger.Error("Failed to fetch import run: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch import run"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": run})
}
