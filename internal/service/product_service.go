package service

import (
	"context"
	"fmt"
	"strings"

	"pharmapos/internal/barcode"
	"pharmapos/internal/dto"
	"pharmapos/internal/model"
	"pharmapos/internal/repository"
	"pharmapos/internal/store"

	"github.com/rs/zerolog/log"
)

type ProductService interface {
	Create(ctx context.Context, userID string, req dto.CreateProductRequest) (*dto.CreateProductResponse, error)
	Get(ctx context.Context, userID, id string) (*dto.ProductResponse, error)
	Update(ctx context.Context, userID, id string, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Restock(ctx context.Context, userID, id string, quantity int) (*dto.ProductResponse, error)
	Delete(ctx context.Context, userID, id string) error
	List(ctx context.Context, userID string, filter dto.ProductFilter) ([]dto.ProductResponse, error)
	FindByBarcode(ctx context.Context, userID, code string) (*dto.ProductResponse, error)
}

type productService struct {
	repo     repository.ProductRepository
	barcodes *barcode.Generator
}

func NewProductService(repo repository.ProductRepository, barcodes *barcode.Generator) ProductService {
	if barcodes == nil {
		barcodes = barcode.NewGenerator(nil)
	}
	return &productService{repo: repo, barcodes: barcodes}
}

// Create inserts a product unless one with the same name already exists for
// the user, in which case the existing product is returned unchanged.
func (s *productService) Create(ctx context.Context, userID string, req dto.CreateProductRequest) (*dto.CreateProductResponse, error) {
	name := strings.TrimSpace(req.Name)
	existing, err := s.repo.FindByName(ctx, userID, name)
	if err == nil {
		log.Info().Str("product_id", existing.ID).Str("name", name).Msg("product already exists")
		return &dto.CreateProductResponse{Product: productToResponse(existing), Existing: true}, nil
	}
	if notFound(err) != ErrNotFound {
		return nil, fmt.Errorf("checking duplicate product: %w", err)
	}

	p := &model.Product{
		UserID:        userID,
		Name:          name,
		Category:      req.Category,
		Price:         req.Price,
		Cost:          req.Cost,
		StockQuantity: req.StockQuantity,
		MinimumStock:  req.MinimumStock,
		BatchNumber:   req.BatchNumber,
		Manufacturer:  req.Manufacturer,
		ExpiryDate:    req.ExpiryDate,
		Description:   req.Description,
	}
	if req.GenerateBarcode && (p.BatchNumber == nil || *p.BatchNumber == "") {
		code := s.barcodes.EAN13()
		p.BatchNumber = &code
	}
	if err := model.Validate(p); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("creating product: %w", err)
	}
	log.Info().Str("product_id", p.ID).Str("name", p.Name).Int("stock", p.StockQuantity).Msg("product created")
	return &dto.CreateProductResponse{Product: productToResponse(p)}, nil
}

func (s *productService) Get(ctx context.Context, userID, id string) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, notFound(err)
	}
	resp := productToResponse(p)
	return &resp, nil
}

func (s *productService) Update(ctx context.Context, userID, id string, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	patch := store.Record{}
	if req.Name != nil {
		patch["name"] = strings.TrimSpace(*req.Name)
	}
	setPatch(patch, "category", req.Category)
	setPatch(patch, "price", req.Price)
	setPatch(patch, "cost", req.Cost)
	setPatch(patch, "minimum_stock", req.MinimumStock)
	setPatch(patch, "batch_number", req.BatchNumber)
	setPatch(patch, "manufacturer", req.Manufacturer)
	setPatch(patch, "expiry_date", req.ExpiryDate)
	setPatch(patch, "description", req.Description)
	if len(patch) == 0 {
		return s.Get(ctx, userID, id)
	}
	p, err := s.repo.Update(ctx, userID, id, patch)
	if err != nil {
		return nil, notFound(err)
	}
	resp := productToResponse(p)
	return &resp, nil
}

// Restock adds quantity to the current stock level.
func (s *productService) Restock(ctx context.Context, userID, id string, quantity int) (*dto.ProductResponse, error) {
	if quantity <= 0 {
		return nil, ErrInvalidAmount
	}
	p, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, notFound(err)
	}
	updated, err := s.repo.Update(ctx, userID, id, store.Record{"stock_quantity": p.StockQuantity + quantity})
	if err != nil {
		return nil, notFound(err)
	}
	log.Info().Str("product_id", id).Int("added", quantity).Int("stock", updated.StockQuantity).Msg("product restocked")
	resp := productToResponse(updated)
	return &resp, nil
}

func (s *productService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.repo.FindByID(ctx, userID, id); err != nil {
		return notFound(err)
	}
	return s.repo.Delete(ctx, userID, id)
}

func (s *productService) List(ctx context.Context, userID string, filter dto.ProductFilter) ([]dto.ProductResponse, error) {
	ps, err := s.repo.List(ctx, userID, repository.ProductListOptions{
		InStockOnly: filter.InStock,
		Category:    filter.Category,
		Search:      filter.Search,
		Limit:       filter.Limit,
	})
	if err != nil {
		return nil, err
	}
	return productsToResponse(ps), nil
}

func (s *productService) FindByBarcode(ctx context.Context, userID, code string) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByBarcode(ctx, userID, strings.TrimSpace(code))
	if err != nil {
		return nil, notFound(err)
	}
	resp := productToResponse(p)
	return &resp, nil
}

func setPatch[T any](patch store.Record, key string, v *T) {
	if v != nil {
		patch[key] = *v
	}
}
