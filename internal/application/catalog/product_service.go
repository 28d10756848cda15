package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/saleledger/backend/internal/domain/catalog"
	"github.com/saleledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductService handles product-related business operations.
// Stock normally moves through sales; SetStock is the manual override.
type ProductService struct {
	productRepo    catalog.ProductRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, log *zap.Logger) *ProductService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductService{productRepo: productRepo, logger: log}
}

// SetEventPublisher sets the event publisher for domain events
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.Name, req.SalePrice, req.StockQuantity)
	if err != nil {
		return nil, err
	}
	product.Description = req.Description

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.find(ctx, productID)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves a list of products with filtering and pagination
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
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
	if filter.InStock != nil {
		domainFilter.Filters["in_stock"] = *filter.InStock
	}

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToProductResponses(products), total, nil
}

// Update updates a product's profile
func (s *ProductService) Update(ctx context.Context, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.find(ctx, productID)
	if err != nil {
		return nil, err
	}

	name, description, price := product.Name, product.Description, product.SalePrice
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = *req.Description
	}
	if req.SalePrice != nil {
		price = *req.SalePrice
	}
	if err := product.Update(name, description, price); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// SetStock overwrites the on-hand quantity
func (s *ProductService) SetStock(ctx context.Context, productID uuid.UUID, req SetStockRequest) (*ProductResponse, error) {
	if req.StockQuantity == nil {
		return nil, shared.NewValidationError("INVALID_STOCK", "Stock quantity is required")
	}
	product, err := s.find(ctx, productID)
	if err != nil {
		return nil, err
	}
	before := product.StockQuantity
	if err := product.SetStock(*req.StockQuantity); err != nil {
		return nil, err
	}
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product stock set manually",
		zap.String("product_id", productID.String()),
		zap.Int("before", before),
		zap.Int("after", product.StockQuantity),
	)
	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// Delete deletes a product. Sales that reference it keep their line item
// snapshot; later stock reversals skip the missing product.
func (s *ProductService) Delete(ctx context.Context, productID uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, productID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewNotFoundError("product", productID.String())
		}
		return err
	}
	return nil
}

func (s *ProductService) find(ctx context.Context, productID uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("product", productID.String())
		}
		return nil, err
	}
	return product, nil
}

func (s *ProductService) publishEvents(ctx context.Context, product *catalog.Product) {
	events := product.GetDomainEvents()
	product.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish product events",
			zap.String("product_id", product.ID.String()),
			zap.Error(err),
		)
	}
}
