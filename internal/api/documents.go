package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/celerix-dev/firmdesk/internal/documents"
	"github.com/celerix-dev/firmdesk/pkg/schema"
)

func (h *Handler) ListDocuments(c *gin.Context) {
	docs, err := h.Docs.List(c.Query("clientId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h *Handler) GetDocument(c *gin.Context) {
	doc, err := h.Docs.Get(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) CreateDocument(c *gin.Context) {
	var input struct {
		ID        string `json:"id"`
		ClientID  string `json:"clientId" binding:"required"`
		Title     string `json:"title" binding:"required"`
		Content   string `json:"content"`
		CreatedBy string `json:"createdBy"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.Docs.Create(schema.ClientDocument{
		ID:        input.ID,
		ClientID:  input.ClientID,
		Title:     input.Title,
		Content:   input.Content,
		CreatedBy: input.CreatedBy,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// TransitionDocument handles POST /documents/:id/:transition. Sign takes
// {"signer": "..."} in the body.
func (h *Handler) TransitionDocument(c *gin.Context) {
	t, err := documents.ParseTransition(c.Param("transition"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	var input struct {
		Signer string `json:"signer"`
	}
	if t == documents.Sign {
		if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	doc, err := h.Docs.Transition(c.Param("id"), t, input.Signer)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) DeleteDocument(c *gin.Context) {
	if err := h.Docs.Delete(c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
