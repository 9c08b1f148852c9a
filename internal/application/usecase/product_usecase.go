package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Inventario-farmacia/internal/application/dto"
	"github.com/jhoicas/Inventario-farmacia/internal/domain"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/entity"
	"github.com/jhoicas/Inventario-farmacia/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ProductUseCase casos de uso del catálogo. El stock no se toca aquí: se maneja vía movimientos.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un nuevo producto activo. SKU único por empresa.
func (uc *ProductUseCase) Create(ctx context.Context, companyID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	if companyID == "" || in.SKU == "" || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if anyNegative(in.Price, in.Cost, in.ReorderPoint, in.ReorderQuantity) {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.repo.GetByCompanyAndSKU(ctx, companyID, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if in.UnitMeasure == "" {
		in.UnitMeasure = "unidad"
	}
	now := time.Now()
	product := &entity.Product{
		ID:              uuid.New().String(),
		CompanyID:       companyID,
		SKU:             in.SKU,
		Name:            in.Name,
		Description:     in.Description,
		Price:           in.Price,
		Cost:            in.Cost,
		ReorderPoint:    in.ReorderPoint,
		ReorderQuantity: in.ReorderQuantity,
		UnitMeasure:     in.UnitMeasure,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID dentro de la empresa.
func (uc *ProductUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.ProductResponse, error) {
	product, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Update actualiza un producto. No permite modificar Cost (se recalcula en cada recepción).
func (uc *ProductUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.load(ctx, companyID, id)
	if err != nil {
		return nil, err
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
	if in.ReorderPoint != nil {
		if in.ReorderPoint.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.ReorderPoint = *in.ReorderPoint
	}
	if in.ReorderQuantity != nil {
		if in.ReorderQuantity.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.ReorderQuantity = *in.ReorderQuantity
	}
	if in.UnitMeasure != nil {
		product.UnitMeasure = *in.UnitMeasure
	}
	if in.Active != nil {
		product.Active = *in.Active
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Deactivate desactiva el producto. Los productos con historial no se eliminan.
func (uc *ProductUseCase) Deactivate(ctx context.Context, companyID, id string) error {
	product, err := uc.load(ctx, companyID, id)
	if err != nil {
		return err
	}
	if !product.Active {
		return nil
	}
	product.Active = false
	product.UpdatedAt = time.Now()
	return uc.repo.Update(ctx, product)
}

// List lista productos por empresa con filtros y paginación.
func (uc *ProductUseCase) List(ctx context.Context, companyID string, filter repository.ProductFilter) (*dto.ProductListResponse, error) {
	list, err := uc.repo.List(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

func (uc *ProductUseCase) load(ctx context.Context, companyID, id string) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

func anyNegative(values ...decimal.Decimal) bool {
	for _, v := range values {
		if v.IsNegative() {
			return true
		}
	}
	return false
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:              p.ID,
		CompanyID:       p.CompanyID,
		SKU:             p.SKU,
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price,
		Cost:            p.Cost,
		ReorderPoint:    p.ReorderPoint,
		ReorderQuantity: p.ReorderQuantity,
		UnitMeasure:     p.UnitMeasure,
		Active:          p.Active,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
