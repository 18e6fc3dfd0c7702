package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-orders/kds"
	"github.com/yeremiapane/restaurant-orders/models"
	"github.com/yeremiapane/restaurant-orders/repository"
	"github.com/yeremiapane/restaurant-orders/services"
	"github.com/yeremiapane/restaurant-orders/utils"
)

// OrderSubmitter is the transaction engine as seen by the HTTP layer.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, lines []models.LineItem) (*models.Order, error)
}

type OrderReader interface {
	ListOrders(ctx context.Context) ([]models.Order, error)
	FindOrder(ctx context.Context, id uint) (*models.Order, error)
}

type IngredientLister interface {
	ListIngredients(ctx context.Context) ([]models.Ingredient, error)
}

type OrderController struct {
	orders      OrderSubmitter
	reader      OrderReader
	ingredients IngredientLister
	hub         *kds.Hub
}

// NewOrderController wires the order endpoints. hub may be nil.
func NewOrderController(orders OrderSubmitter, reader OrderReader, ingredients IngredientLister, hub *kds.Hub) *OrderController {
	return &OrderController{
		orders:      orders,
		reader:      reader,
		ingredients: ingredients,
		hub:         hub,
	}
}

// CreateOrder -> body is a JSON array of { productId, quantity }
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var lines []models.LineItem
	if err := c.ShouldBindJSON(&lines); err != nil {
		utils.RespondJSON(c, http.StatusBadRequest, "Invalid body. Expected array of { productId, quantity }.", nil)
		return
	}

	order, err := oc.orders.SubmitOrder(c.Request.Context(), lines)

	switch services.Classify(err) {
	case services.OutcomeCreated:
		utils.RespondJSON(c, http.StatusCreated, "Order created", order)
		oc.broadcast(c.Request.Context(), order)
	case services.OutcomeInvalid:
		utils.RespondError(c, http.StatusBadRequest, err)
	case services.OutcomeProductNotFound:
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
	case services.OutcomeConflict:
		var conflict *services.StockConflictError
		errors.As(err, &conflict)
		utils.RespondStockConflict(c, conflict.Diagnostics)
	default:
		utils.RespondInternalError(c, err, "order creation failed")
	}
}

func (oc *OrderController) broadcast(ctx context.Context, order *models.Order) {
	if oc.hub == nil || oc.hub.ClientCount() == 0 {
		return
	}
	oc.hub.BroadcastOrderCreated(order)

	levels, err := oc.ingredients.ListIngredients(ctx)
	if err != nil {
		utils.InfoLogger.WithError(err).Warn("skipping stock_update broadcast")
		return
	}
	oc.hub.BroadcastStockUpdate(levels)
}

// GetAllOrders -> list orders beserta items
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	orders, err := oc.reader.ListOrders(c.Request.Context())
	if err != nil {
		utils.RespondInternalError(c, err, "list orders failed")
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// GetOrderByID -> detail 1 order
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("order_id"), 10, 64)
	if err != nil {
		utils.RespondJSON(c, http.StatusBadRequest, "Invalid order ID", nil)
		return
	}

	order, err := oc.reader.FindOrder(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondJSON(c, http.StatusNotFound, "Order not found", nil)
			return
		}
		utils.RespondInternalError(c, err, "find order failed")
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}
