package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rifasolidaria/rifa/config"
	"github.com/stretchr/testify/assert"
)

func testRaffleConfig() config.RaffleConfig {
	return config.RaffleConfig{
		Name:           "Rifa Solidaria",
		TotalNumbers:   300,
		NumbersPerPage: 100,
		PriceCents:     1000,
		PixKey:         "81912345678",
		PixName:        "Ana Silva",
		PixBank:        "Banco do Brasil",
	}
}

func TestRaffleHandler_info(t *testing.T) {
	handler := NewRaffleHandler(testRaffleConfig())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/raffle", nil)

	handler.info(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response raffleResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "Rifa Solidaria", response.Name)
	assert.Equal(t, 300, response.TotalNumbers)
	assert.Equal(t, int64(1000), response.PriceCents)
	assert.Empty(t, response.Numbers)
	assert.Zero(t, response.TotalCents)
}

func TestRaffleHandler_info_withSelection(t *testing.T) {
	handler := NewRaffleHandler(testRaffleConfig())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/raffle?numbers=12,5,12", nil)

	handler.info(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response raffleResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	// Duplicates collapse before pricing.
	assert.Equal(t, []int{5, 12}, response.Numbers)
	assert.Equal(t, int64(2000), response.TotalCents)
}

func TestRaffleHandler_info_badSelection(t *testing.T) {
	handler := NewRaffleHandler(testRaffleConfig())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/raffle?numbers=5,abc", nil)

	handler.info(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
