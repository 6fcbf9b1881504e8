package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/driveline/carstore-api/internal/dto"
	"github.com/driveline/carstore-api/internal/middleware"
	"github.com/driveline/carstore-api/internal/model"
	"github.com/driveline/carstore-api/internal/service"
)

type OrderHandler struct {
	ledger *service.LedgerService
}

func NewOrderHandler(ledger *service.LedgerService) *OrderHandler {
	return &OrderHandler{ledger: ledger}
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	sinceDays := 0
	if raw := c.Query("since_days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid since_days"})
			return
		}
		sinceDays = n
	}

	orders, err := h.ledger.ListForUser(c.Request.Context(), middleware.GetUserID(c), sinceDays)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	items := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, toOrderResponse(&orders[i]))
	}
	c.JSON(http.StatusOK, dto.OrderListResponse{Orders: items, Total: len(items)})
}

func (h *OrderHandler) ListCancelled(c *gin.Context) {
	cancelled, err := h.ledger.ListCancelledForUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	items := make([]dto.CancelledOrderResponse, 0, len(cancelled))
	for i := range cancelled {
		items = append(items, dto.CancelledOrderResponse{
			OrderResponse: toOrderResponse(&cancelled[i].Order),
			CancelReason:  cancelled[i].CancelReason,
			CancelledAt:   cancelled[i].CancelledAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"orders": items, "total": len(items)})
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
		return
	}

	var req dto.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.ledger.Cancel(c.Request.Context(), middleware.GetUserID(c), orderID, req.Reason)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
		case errors.Is(err, service.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		case errors.Is(err, service.ErrOrderAccessDenied):
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order cancelled"})
}

func toOrderResponse(order *model.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:             order.ID,
		ProductID:      order.ProductID,
		ProductName:    order.ProductName,
		ProductImage:   order.ProductImage,
		Quantity:       order.Quantity,
		UnitPrice:      order.UnitPrice,
		DeliveryCharge: order.DeliveryCharge,
		Total:          order.Total,
		Address:        order.Address,
		PaymentMethod:  order.PaymentMethod,
		Status:         order.Status,
		PurchasedAt:    order.PurchasedAt,
		DeliveryFrom:   order.DeliveryFrom,
		DeliveryUntil:  order.DeliveryUntil,
	}
}
