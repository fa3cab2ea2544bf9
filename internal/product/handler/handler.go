package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/shoplite/pricing-service/internal/pkg/httpx"
	"github.com/shoplite/pricing-service/internal/pkg/logger"
	"github.com/shoplite/pricing-service/internal/product"
	"github.com/shoplite/pricing-service/internal/product/dto"
)

type ProductHandler struct {
	uc     product.UseCase
	logger logger.Logger
}

func NewProductHandler(uc product.UseCase, log logger.Logger) *ProductHandler {
	return &ProductHandler{uc: uc, logger: log}
}

func (h *ProductHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/products", h.List)
	mux.HandleFunc("GET /api/v1/products/{id}", h.Get)
	mux.HandleFunc("POST /api/v1/products", h.Create)
	mux.HandleFunc("POST /api/v1/products/import", h.Import)
	mux.HandleFunc("DELETE /api/v1/products/{id}", h.Retire)
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	filters := &dto.ProductFilters{
		Name:        q.Get("name"),
		Category:    q.Get("category"),
		SearchQuery: q.Get("q"),
		Page:        page,
		PageSize:    pageSize,
	}

	items, count, err := h.uc.ListProducts(r.Context(), filters)
	if err != nil {
		h.logger.Error("failed to list products", zap.Error(err))
		httpx.Error(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"products": items,
		"total":    count,
	})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.uc.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input dto.CreateProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	p, err := h.uc.CreateProduct(r.Context(), &input)
	if err != nil {
		h.logger.Error("failed to create product", zap.Error(err))
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

// Import accepts the catalog CSV as the request body.
func (h *ProductHandler) Import(w http.ResponseWriter, r *http.Request) {
	imported, err := h.uc.ImportCSV(r.Context(), r.Body)
	if err != nil {
		h.logger.Error("csv import failed", zap.Error(err))
		httpx.JSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]interface{}{
		"imported": len(imported),
		"products": imported,
	})
}

func (h *ProductHandler) Retire(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.RetireProduct(r.Context(), r.PathValue("id")); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusNoContent, nil)
}
