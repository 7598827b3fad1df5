package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/celerix-dev/firmdesk/internal/invoices"
	"github.com/celerix-dev/firmdesk/pkg/schema"
)

func (h *Handler) ListClients(c *gin.Context) {
	list, err := h.Clients.List()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) AddClient(c *gin.Context) {
	var input struct {
		Name  string `json:"name" binding:"required"`
		PAN   string `json:"pan"`
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	client, err := h.Clients.Add(schema.Client{Name: input.Name, PAN: input.PAN, Email: input.Email})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

func (h *Handler) RenameClient(c *gin.Context) {
	var input struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	client, err := h.Clients.Rename(c.Param("id"), input.Name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *Handler) ListInvoices(c *gin.Context) {
	list, err := h.Invoices.List(c.Query("clientId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) CreateInvoice(c *gin.Context) {
	var input struct {
		ClientID string               `json:"clientId" binding:"required"`
		Lines    []schema.InvoiceLine `json:"lines"`
		TaxRate  decimal.Decimal      `json:"taxRate"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	inv, err := h.Invoices.Create(invoices.Draft{ClientID: input.ClientID, Lines: input.Lines, TaxRate: input.TaxRate})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (h *Handler) MarkInvoicePaid(c *gin.Context) {
	inv, err := h.Invoices.MarkPaid(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}
