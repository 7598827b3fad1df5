package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/celerix-dev/firmdesk/pkg/sdk"
)

// ExportBackup returns the namespaced store as a downloadable backup package.
func (h *Handler) ExportBackup(c *gin.Context) {
	started := time.Now()
	content, err := h.Store.CreateBackup()
	h.observeBackup("create", len(content), started, err)
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", sdk.BackupFileName(started)))
	c.Data(http.StatusOK, sdk.BackupContentType, []byte(content))
}

// RestoreBackup accepts a backup package as the raw request body.
func (h *Handler) RestoreBackup(c *gin.Context) {
	started := time.Now()
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	n, err := h.Store.RestoreBackup(string(body))
	h.observeBackup("restore", len(body), started, err)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "restored": n})
}

// Reset removes every namespaced key.
func (h *Handler) Reset(c *gin.Context) {
	n, err := h.Store.HardReset()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "removed": n})
}

func (h *Handler) observeBackup(op string, size int, started time.Time, err error) {
	if h.Metrics != nil {
		h.Metrics.ObserveBackup(op, size, started, err)
	}
}
