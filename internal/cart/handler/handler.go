package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/shoplite/pricing-service/internal/cart"
	"github.com/shoplite/pricing-service/internal/cart/dto"
	"github.com/shoplite/pricing-service/internal/pkg/httpx"
	"github.com/shoplite/pricing-service/internal/pkg/logger"
)

type CartHandler struct {
	uc     cart.UseCase
	logger logger.Logger
}

func NewCartHandler(uc cart.UseCase, log logger.Logger) *CartHandler {
	return &CartHandler{uc: uc, logger: log}
}

func (h *CartHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/carts", h.Create)
	mux.HandleFunc("GET /api/v1/carts/{id}", h.Get)
	mux.HandleFunc("POST /api/v1/carts/{id}/items", h.AddItems)
	mux.HandleFunc("DELETE /api/v1/carts/{id}/items/{itemID}", h.RemoveItem)
}

type createCartRequest struct {
	Items []dto.CartItemInput `json:"items"`
}

func (h *CartHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCartRequest
	if r.Body != nil {
		// An empty body creates an empty cart.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	c, err := h.uc.CreateCart(r.Context(), req.Items)
	if err != nil {
		h.logger.Error("failed to create cart", zap.Error(err))
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.uc.GetCart(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *CartHandler) AddItems(w http.ResponseWriter, r *http.Request) {
	var req createCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	c, err := h.uc.AddItems(r.Context(), r.PathValue("id"), req.Items)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	err := h.uc.RemoveItem(r.Context(), r.PathValue("id"), r.PathValue("itemID"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusNoContent, nil)
}
