package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-orders/models"
)

func TestFormatCurrency(t *testing.T) {
	cases := map[string]string{
		"0":       "R$ 0,00",
		"15":      "R$ 15,00",
		"1234.5":  "R$ 1.234,50",
		"1000000": "R$ 1.000.000,00",
		"-18.005": "-R$ 18,01",
		"999.999": "R$ 1.000,00",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatCurrency(decimal.RequireFromString(in)), in)
	}
}

func TestInitLogger(t *testing.T) {
	InitLogger("debug")
	assert.Equal(t, logrus.DebugLevel, InfoLogger.GetLevel())

	InitLogger("nonsense")
	assert.Equal(t, logrus.InfoLevel, InfoLogger.GetLevel())
	assert.Equal(t, logrus.ErrorLevel, ErrorLogger.GetLevel())
}

func TestRespond(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondJSON(c, http.StatusCreated, "created", gin.H{"id": 1})

	var body JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, body.Status)
	assert.Equal(t, "created", body.Message)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	RespondError(c, http.StatusNotFound, errors.New("missing"))
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Status)
	assert.Equal(t, "missing", body.Message)
}

func TestRespondStockConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondStockConflict(c, []models.StockDiagnostic{{IngredientName: "Queijo Cheddar", Required: 4, Available: 3}})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"status":false,"message":"Stock validation failed","data":[
		{"ingredientName":"Queijo Cheddar","required":4,"available":3,"affectedProducts":null}]}`, w.Body.String())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	RespondStockConflict(c, nil)
	assert.JSONEq(t, `{"status":false,"message":"Stock validation failed","data":[]}`, w.Body.String())
}

func TestRespondInternalError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	saved := ErrorLogger
	t.Cleanup(func() { ErrorLogger = saved })
	var hook *test.Hook
	ErrorLogger, hook = test.NewNullLogger()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(RequestIDKey, "req-1")
	RespondInternalError(c, errors.New("database is locked"), "list orders failed")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"status":false,"message":"Internal Server Error"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "locked")
	require.Len(t, c.Errors, 1)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "list orders failed", entry.Message)
	assert.Equal(t, "req-1", entry.Data["req_id"])
}
