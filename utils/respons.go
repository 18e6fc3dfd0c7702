package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/restaurant-orders/models"
)

// JSONResponse is the envelope every endpoint answers with.
type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// RequestIDKey is the gin context key holding the X-Request-Id of a request.
const RequestIDKey = "request_id"

const (
	MessageInternalError = "Internal Server Error"
	MessageStockConflict = "Stock validation failed"
)

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

// RespondError uses the error text as the message. Only for errors whose text
// is meant for the caller.
func RespondError(c *gin.Context, code int, err error) {
	RespondJSON(c, code, err.Error(), nil)
}

// RespondStockConflict answers 409 with one diagnostic per short ingredient.
// The list is always present in data, even when empty.
func RespondStockConflict(c *gin.Context, diagnostics []models.StockDiagnostic) {
	if diagnostics == nil {
		diagnostics = []models.StockDiagnostic{}
	}
	RespondJSON(c, http.StatusConflict, MessageStockConflict, diagnostics)
}

// RespondInternalError logs err with the request id and answers a generic 500.
func RespondInternalError(c *gin.Context, err error, action string) {
	_ = c.Error(err)
	ErrorLogger.WithFields(logrus.Fields{
		"req_id": c.GetString(RequestIDKey),
		"path":   c.FullPath(),
	}).WithError(err).Error(action)
	RespondJSON(c, http.StatusInternalServerError, MessageInternalError, nil)
}
