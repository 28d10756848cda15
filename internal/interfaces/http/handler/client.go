package handler

import (
	"github.com/gin-gonic/gin"
	partnerapp "github.com/saleledger/backend/internal/application/partner"
)

// ClientHandler handles client-related API endpoints
type ClientHandler struct {
	BaseHandler
	clientService *partnerapp.ClientService
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clientService *partnerapp.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// Create registers a client with a zero balance.
// POST /clients
func (h *ClientHandler) Create(c *gin.Context) {
	var req partnerapp.CreateClientRequest
	if !h.bindJSON(c, &req) {
		return
	}

	client, err := h.clientService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, client)
}

// GetByID returns one client with its current balance.
// GET /clients/:id
func (h *ClientHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id", "client")
	if !ok {
		return
	}

	client, err := h.clientService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// List returns clients, optionally searched by name.
// GET /clients
func (h *ClientHandler) List(c *gin.Context) {
	var filter partnerapp.ClientListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	clients, total, err := h.clientService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, clients, total, max(filter.Page, 1), filter.PageSize)
}

// Update replaces the client profile. The balance is not editable here.
// PUT /clients/:id
func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id", "client")
	if !ok {
		return
	}
	var req partnerapp.UpdateClientRequest
	if !h.bindJSON(c, &req) {
		return
	}

	client, err := h.clientService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// Delete removes a client that owes nothing and has no sales.
// DELETE /clients/:id
func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id", "client")
	if !ok {
		return
	}

	if err := h.clientService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// BalanceEntries returns the client's balance history, newest first.
// GET /clients/:id/balance-entries
func (h *ClientHandler) BalanceEntries(c *gin.Context) {
	id, ok := h.pathID(c, "id", "client")
	if !ok {
		return
	}
	var filter partnerapp.BalanceEntryFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	entries, total, err := h.clientService.BalanceHistory(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, entries, total, max(filter.Page, 1), filter.PageSize)
}
