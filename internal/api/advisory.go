package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Ask streams an advisory answer about a client as plain text.
func (h *Handler) Ask(c *gin.Context) {
	if h.Advisor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "advisory is not configured"})
		return
	}
	var input struct {
		Question string `json:"question" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	w := &flushWriter{c: c}
	if _, err := h.Advisor.Ask(c.Request.Context(), c.Param("id"), input.Question, nil, w); err != nil {
		if !w.wrote {
			fail(c, err)
			return
		}
		// Headers are gone; the client sees a truncated body.
		_ = c.Error(err)
	}
}

// ChatHistory returns the stored advisory conversation for a client.
func (h *Handler) ChatHistory(c *gin.Context) {
	if h.Advisor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "advisory is not configured"})
		return
	}
	msgs, err := h.Advisor.History(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

type flushWriter struct {
	c     *gin.Context
	wrote bool
}

func (f *flushWriter) Write(p []byte) (int, error) {
	if !f.wrote {
		f.c.Status(http.StatusOK)
		f.wrote = true
	}
	n, err := f.c.Writer.Write(p)
	f.c.Writer.Flush()
	return n, err
}
