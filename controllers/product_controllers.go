package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/yeremiapane/restaurant-orders/repository"
	"github.com/yeremiapane/restaurant-orders/utils"
)

type ProductController struct {
	products repository.ProductStore
}

func NewProductController(products repository.ProductStore) *ProductController {
	return &ProductController{products: products}
}

// GetAllProducts -> menu ordered by name
func (pc *ProductController) GetAllProducts(c *gin.Context) {
	products, err := pc.products.ListProducts(c.Request.Context())
	if err != nil {
		utils.RespondInternalError(c, err, "list products failed")
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of products", products)
}

// UpdatePrice only affects orders submitted afterwards.
func (pc *ProductController) UpdatePrice(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
	if err != nil {
		utils.RespondJSON(c, http.StatusBadRequest, "Invalid product ID", nil)
		return
	}

	var body struct {
		Price *decimal.Decimal `json:"price" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondJSON(c, http.StatusBadRequest, "Expected body { price }", nil)
		return
	}

	product, err := pc.products.UpdatePrice(c.Request.Context(), uint(id), *body.Price)
	switch {
	case err == nil:
		utils.RespondJSON(c, http.StatusOK, "Price updated", product)
	case errors.Is(err, repository.ErrNotFound):
		utils.RespondJSON(c, http.StatusNotFound, "Product not found", nil)
	case errors.Is(err, repository.ErrInvalidInput):
		utils.RespondError(c, http.StatusBadRequest, err)
	default:
		utils.RespondInternalError(c, err, "update price failed")
	}
}
