package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/shoplite/pricing-service/internal/order"
	"github.com/shoplite/pricing-service/internal/pkg/httpx"
	"github.com/shoplite/pricing-service/internal/pkg/logger"
)

type OrderHandler struct {
	uc     order.UseCase
	logger logger.Logger
}

func NewOrderHandler(uc order.UseCase, log logger.Logger) *OrderHandler {
	return &OrderHandler{uc: uc, logger: log}
}

func (h *OrderHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/orders", h.Place)
	mux.HandleFunc("GET /api/v1/orders/{id}", h.Get)
	mux.HandleFunc("POST /api/v1/orders/{id}/cancel", h.Cancel)
}

type placeOrderRequest struct {
	CartID string `json:"cart_id"`
}

func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CartID == "" {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"error": "cart_id is required"})
		return
	}

	o, err := h.uc.PlaceOrder(r.Context(), req.CartID)
	if err != nil {
		h.logger.Warn("order placement rejected",
			zap.String("cart_id", req.CartID), zap.Error(err))
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.uc.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, o)
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	o, err := h.uc.CancelOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, o)
}
