package handlers

import (
	"net/http"
	"strconv"

	"catalogsync/internal/export"
	"catalogsync/internal/logger"

	"github.com/gin-gonic/gin"
)

// SnapshotHandler lists the per-product documents written by the export job.
type SnapshotHandler struct {
	dir    string
	logger *logger.Logger
}

func NewSnapshotHandler(dir string, logger *logger.Logger) *SnapshotHandler {
	return &SnapshotHandler{dir: dir, logger: logger}
}

// List returns the snapshots ordered by id. limit=0 or a non-numeric limit returns all of them.
func (h *SnapshotHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	snapshots, err := export.ListSnapshots(h.dir, limit)
	if err != nil {
		h.logger.Error("Failed to list snapshots in %s: %v", h.dir, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list snapshots"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": snapshots, "count": len(snapshots)})
}
