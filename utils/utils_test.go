package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"

	"gadgetplan-api/models"
)

func TestGenerateOTPCode(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateOTPCode()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestFormatRupiah(t *testing.T) {
	tests := []struct {
		amount decimal.Decimal
		want   string
	}{
		{decimal.NewFromInt(0), "Rp0"},
		{decimal.NewFromInt(299000), "Rp299.000"},
		{decimal.NewFromInt(20999000), "Rp20.999.000"},
		{decimal.RequireFromString("1499.6"), "Rp1.500"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRupiah(tt.amount))
	}
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "Rp15.000", FormatMoney(models.NewMoney(decimal.NewFromInt(15000))))
	assert.Equal(t, "12.50 USD", FormatMoney(models.Money{Amount: decimal.RequireFromString("12.5"), Currency: currency.USD}))
}

func TestFormatPriceRange(t *testing.T) {
	r := models.PriceRange{Min: decimal.NewFromInt(200000), Max: decimal.NewFromInt(700000)}
	assert.Equal(t, "Rp200.000 - Rp700.000", FormatPriceRange(r))
}

func TestValidateDate(t *testing.T) {
	assert.True(t, ValidateDate("2025-12-31"))
	assert.False(t, ValidateDate("2025-13-01"))
	assert.False(t, ValidateDate("31-12-2025"))
}

func TestSendErrorResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	SendErrorResponse(rec, http.StatusConflict, "Cart is empty")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"error","message":"Cart is empty"}`, rec.Body.String())
}

func TestSendSuccessResponseDefaultsStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	SendSuccessResponse(rec, models.APIResponse{Message: "ok", Data: map[string]int{"count": 2}})

	var body models.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
}

func TestAuthResponses(t *testing.T) {
	rec := httptest.NewRecorder()
	SendAuthOK(rec, false, nil)
	assert.JSONEq(t, `{"ok":false}`, rec.Body.String())

	rec = httptest.NewRecorder()
	SendAuthError(rec, http.StatusBadRequest, "identifier required")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"identifier required"}`, rec.Body.String())
}

func TestSetupLogger(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	SetupLogger("DEBUG", false)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	SetupLogger("chatty", false)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
