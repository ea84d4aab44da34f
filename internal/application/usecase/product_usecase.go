package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-lotes/internal/application/dto"
	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

// ProductUseCase casos de uso de catálogo. Costo y stock se manejan vía lotes y ventas.
type ProductUseCase struct {
	repo    repository.ProductRepository
	batches repository.BatchRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, batches repository.BatchRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, batches: batches}
}

// Create crea un producto sin stock. Cost inicia en 0.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	if in.SKU == "" || in.Name == "" || in.UnitsPerPackage < 1 {
		return nil, domain.ErrInvalidInput
	}
	if in.Price.IsNegative() || in.UnitPrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.repo.GetBySKU(ctx, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	product := &entity.Product{
		ID:              uuid.New().String(),
		SKU:             in.SKU,
		Name:            in.Name,
		Description:     in.Description,
		Price:           in.Price,
		UnitPrice:       in.UnitPrice,
		Cost:            decimal.Zero,
		UnitsPerPackage: in.UnitsPerPackage,
		SellByUnit:      in.SellByUnit,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	return ToProductResponse(product), nil
}

// Update actualiza datos de catálogo. No permite modificar costo, stock ni unidades por paquete.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		product.Name = name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.Price = *in.Price
	}
	if in.UnitPrice != nil {
		if in.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.UnitPrice = *in.UnitPrice
	}
	if in.SellByUnit != nil {
		product.SellByUnit = *in.SellByUnit
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *ToProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// ListBatches lista los lotes del producto en orden FIFO.
func (uc *ProductUseCase) ListBatches(ctx context.Context, productID string) ([]dto.BatchResponse, error) {
	product, err := uc.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	batches, err := uc.batches.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BatchResponse, 0, len(batches))
	for _, b := range batches {
		out = append(out, ToBatchResponse(b))
	}
	return out, nil
}

// ToProductResponse convierte la entidad en su DTO.
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:              p.ID,
		SKU:             p.SKU,
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price,
		UnitPrice:       p.UnitPrice,
		Cost:            p.Cost,
		UnitsPerPackage: p.UnitsPerPackage,
		SellByUnit:      p.SellByUnit,
		PackageQuantity: p.PackageQuantity,
		UnitsAvailable:  p.UnitsAvailable,
		TotalUnits:      p.TotalUnits(),
		TotalIn:         p.TotalIn,
		TotalOut:        p.TotalOut,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// ToBatchResponse convierte un lote en su DTO.
func ToBatchResponse(b *entity.Batch) dto.BatchResponse {
	return dto.BatchResponse{
		ID:                b.ID,
		ProductID:         b.ProductID,
		PurchaseDate:      b.PurchaseDate,
		CostPrice:         b.CostPrice,
		SellingPrice:      b.SellingPrice,
		QuantityReceived:  b.QuantityReceived,
		QuantityRemaining: b.QuantityRemaining,
		UnitsRemaining:    b.UnitsRemaining,
		SourceReference:   b.SourceReference,
		CreatedAt:         b.CreatedAt,
	}
}
