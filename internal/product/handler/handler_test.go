package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplite/pricing-service/internal/model"
	"github.com/shoplite/pricing-service/internal/pkg/logger"
	"github.com/shoplite/pricing-service/internal/product/dto"
	prodRepoPkg "github.com/shoplite/pricing-service/internal/product/repository"
	prodUCPkg "github.com/shoplite/pricing-service/internal/product/usecase"
)

func newMux(t *testing.T) *http.ServeMux {
	t.Helper()
	repo := prodRepoPkg.NewMemoryRepository()
	uc := prodUCPkg.NewProductUseCase(repo, nil, nil, 0.5, logger.NewNop())
	ctx := context.Background()

	for _, row := range []struct{ name, category string }{
		{"Anvil", "hardware"}, {"Rope", "hardware"}, {"Fern", "garden"},
	} {
		_, err := uc.CreateProduct(ctx, &dto.CreateProductInput{
			Name: row.name, Category: row.category,
			DefaultPrice: decimal.NewFromInt(10), TotalInventory: 5,
		})
		require.NoError(t, err)
	}

	mux := http.NewServeMux()
	NewProductHandler(uc, logger.NewNop()).Register(mux)
	return mux
}

func listProducts(t *testing.T, mux *http.ServeMux, query string) []model.Product {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products"+query, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Products []model.Product `json:"products"`
		Total    int             `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Products
}

func TestListProductsEndpointFilters(t *testing.T) {
	mux := newMux(t)

	assert.Len(t, listProducts(t, mux, ""), 3)
	assert.Len(t, listProducts(t, mux, "?category=hardware"), 2)

	byName := listProducts(t, mux, "?name=Anvil")
	require.Len(t, byName, 1)
	assert.Equal(t, "Anvil", byName[0].Name)

	assert.Empty(t, listProducts(t, mux, "?name=Chisel"))
}
