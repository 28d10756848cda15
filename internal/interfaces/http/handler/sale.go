package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	saleapp "github.com/saleledger/backend/internal/application/sale"
)

// SaleHandler exposes the sale ledger over HTTP
type SaleHandler struct {
	BaseHandler
	ledger *saleapp.LedgerService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(ledger *saleapp.LedgerService) *SaleHandler {
	return &SaleHandler{ledger: ledger}
}

// saleListQuery is the query string of GET /sales. Dates accept RFC 3339 or
// YYYY-MM-DD; a bare "to" date includes the whole day.
type saleListQuery struct {
	ClientID string `form:"client_id" binding:"omitempty,uuid"`
	Status   string `form:"status" binding:"omitempty,oneof=PENDING COMPLETED"`
	From     string `form:"from"`
	To       string `form:"to"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

const dateLayout = "2006-01-02"

func parseBound(value string, endOfDay bool) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, true
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, true
}

// Create records a sale and applies its stock and balance effects.
// POST /sales
func (h *SaleHandler) Create(c *gin.Context) {
	var req saleapp.CreateSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.ledger.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Update replaces a sale with its new state.
// PUT /sales/:id
func (h *SaleHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id", "sale")
	if !ok {
		return
	}
	var req saleapp.UpdateSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.ledger.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete removes a sale and reverses its effects.
// DELETE /sales/:id
func (h *SaleHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id", "sale")
	if !ok {
		return
	}

	result, err := h.ledger.Delete(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetByID returns one sale.
// GET /sales/:id
func (h *SaleHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id", "sale")
	if !ok {
		return
	}

	sale, err := h.ledger.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// List returns sales filtered by client, status and date range.
// GET /sales
func (h *SaleHandler) List(c *gin.Context) {
	var q saleListQuery
	if !h.bindQuery(c, &q) {
		return
	}

	filter := saleapp.SaleListFilter{
		Page:     q.Page,
		PageSize: q.PageSize,
		OrderBy:  q.OrderBy,
		OrderDir: q.OrderDir,
		Status:   q.Status,
	}
	if q.ClientID != "" {
		clientID := uuid.MustParse(q.ClientID)
		filter.ClientID = &clientID
	}
	var ok bool
	if filter.From, ok = parseBound(q.From, false); !ok {
		h.BadRequest(c, "Invalid 'from' date")
		return
	}
	if filter.To, ok = parseBound(q.To, true); !ok {
		h.BadRequest(c, "Invalid 'to' date")
		return
	}

	sales, total, err := h.ledger.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, sales, total, max(q.Page, 1), q.PageSize)
}

// Quote previews totals and the client balance for a cart without saving.
// POST /sales/quote
func (h *SaleHandler) Quote(c *gin.Context) {
	var req saleapp.QuoteRequest
	if !h.bindJSON(c, &req) {
		return
	}

	quote, err := h.ledger.Quote(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}
