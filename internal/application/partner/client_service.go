package partner

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/saleledger/backend/internal/domain/partner"
	"github.com/saleledger/backend/internal/domain/sale"
	"github.com/saleledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ClientService handles client profiles and exposes the balance history.
// The balance itself only moves through the sale ledger.
type ClientService struct {
	clientRepo partner.ClientRepository
	entryRepo  partner.BalanceEntryRepository
	saleRepo   sale.Repository
	logger     *zap.Logger
}

// NewClientService creates a new ClientService
func NewClientService(
	clientRepo partner.ClientRepository,
	entryRepo partner.BalanceEntryRepository,
	saleRepo sale.Repository,
	log *zap.Logger,
) *ClientService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ClientService{
		clientRepo: clientRepo,
		entryRepo:  entryRepo,
		saleRepo:   saleRepo,
		logger:     log,
	}
}

// Create registers a client with a zero balance
func (s *ClientService) Create(ctx context.Context, req CreateClientRequest) (*ClientResponse, error) {
	client, err := partner.NewClient(req.Name, toContacts(req.Contacts), toAddress(req.Address))
	if err != nil {
		return nil, err
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}
	client.ClearDomainEvents()

	response := ToClientResponse(client)
	return &response, nil
}

// GetByID retrieves a client by ID
func (s *ClientService) GetByID(ctx context.Context, clientID uuid.UUID) (*ClientResponse, error) {
	client, err := s.find(ctx, clientID)
	if err != nil {
		return nil, err
	}
	response := ToClientResponse(client)
	return &response, nil
}

// List retrieves clients with filtering and pagination
func (s *ClientService) List(ctx context.Context, filter ClientListFilter) ([]ClientResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.HasBalance != nil {
		domainFilter.Filters["has_balance"] = *filter.HasBalance
	}

	clients, err := s.clientRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.clientRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ClientResponse, len(clients))
	for i := range clients {
		responses[i] = ToClientResponse(&clients[i])
	}
	return responses, total, nil
}

// Update replaces name, contacts and address
func (s *ClientService) Update(ctx context.Context, clientID uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	client, err := s.find(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if err := client.UpdateProfile(req.Name, toContacts(req.Contacts), toAddress(req.Address)); err != nil {
		return nil, err
	}
	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}

	response := ToClientResponse(client)
	return &response, nil
}

// Delete removes a client that has no sales and a settled balance
func (s *ClientService) Delete(ctx context.Context, clientID uuid.UUID) error {
	client, err := s.find(ctx, clientID)
	if err != nil {
		return err
	}
	if !client.Balance.IsZero() {
		return shared.NewDomainError(shared.CodeInvalidState, "Cannot delete a client with an open balance")
	}
	hasSales, err := s.saleRepo.ExistsForClient(ctx, clientID)
	if err != nil {
		return err
	}
	if hasSales {
		return shared.NewDomainError(shared.CodeInvalidState, "Cannot delete a client with recorded sales")
	}

	if err := s.clientRepo.Delete(ctx, clientID); err != nil {
		return err
	}
	s.logger.Info("Client deleted", zap.String("client_id", clientID.String()))
	return nil
}

// BalanceHistory lists a client's balance entries newest first
func (s *ClientService) BalanceHistory(ctx context.Context, clientID uuid.UUID, filter BalanceEntryFilter) ([]BalanceEntryResponse, int64, error) {
	if _, err := s.find(ctx, clientID); err != nil {
		return nil, 0, err
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Filters:  make(map[string]interface{}),
	}
	if filter.Kind != "" {
		if !partner.BalanceEntryKind(filter.Kind).IsValid() {
			return nil, 0, shared.NewValidationError(shared.CodeValidation, "Unknown balance entry kind: "+filter.Kind)
		}
		domainFilter.Filters["kind"] = filter.Kind
	}

	entries, total, err := s.entryRepo.FindByClient(ctx, clientID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]BalanceEntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToBalanceEntryResponse(&entries[i])
	}
	return responses, total, nil
}

func (s *ClientService) find(ctx context.Context, clientID uuid.UUID) (*partner.Client, error) {
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("client", clientID.String())
		}
		return nil, err
	}
	return client, nil
}
