package product

import (
	"context"
	"io"

	"github.com/shoplite/pricing-service/internal/model"
	"github.com/shoplite/pricing-service/internal/product/dto"
)

type UseCase interface {
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)
	ImportCSV(ctx context.Context, r io.Reader) ([]model.Product, error)
	RetireProduct(ctx context.Context, id string) error
}
