package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-orders/utils"
)

type IngredientController struct {
	ingredients IngredientLister
}

func NewIngredientController(ingredients IngredientLister) *IngredientController {
	return &IngredientController{ingredients: ingredients}
}

func (ic *IngredientController) GetAllIngredients(c *gin.Context) {
	ingredients, err := ic.ingredients.ListIngredients(c.Request.Context())
	if err != nil {
		utils.RespondInternalError(c, err, "list ingredients failed")
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of ingredients", ingredients)
}
