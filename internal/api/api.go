package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/celerix-dev/firmdesk/internal/advisory"
	"github.com/celerix-dev/firmdesk/internal/clients"
	"github.com/celerix-dev/firmdesk/internal/documents"
	"github.com/celerix-dev/firmdesk/internal/invoices"
	"github.com/celerix-dev/firmdesk/internal/metrics"
	"github.com/celerix-dev/firmdesk/pkg/sdk"
)

// Handler serves the JSON API. Advisor and Metrics are optional.
type Handler struct {
	Store    *sdk.Store
	Docs     *documents.Manager
	Clients  *clients.Registry
	Invoices *invoices.Book
	Advisor  *advisory.Advisor
	Metrics  *metrics.Metrics
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, documents.ErrNotFound),
		errors.Is(err, clients.ErrNotFound),
		errors.Is(err, invoices.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, documents.ErrInvalidTransition),
		errors.Is(err, documents.ErrDuplicateID),
		errors.Is(err, invoices.ErrAlreadyPaid):
		return http.StatusConflict
	case errors.Is(err, documents.ErrSignerRequired),
		errors.Is(err, documents.ErrInvalidDocument),
		errors.Is(err, clients.ErrNameMissing),
		errors.Is(err, invoices.ErrNoLines),
		errors.Is(err, invoices.ErrInvalidLine),
		errors.Is(err, invoices.ErrClientRequired),
		errors.Is(err, advisory.ErrEmptyQuestion),
		errors.Is(err, sdk.ErrInvalidBackup):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

// GetLogs returns the activity log, newest first.
func (h *Handler) GetLogs(c *gin.Context) {
	c.JSON(http.StatusOK, h.Store.GetLogs())
}
