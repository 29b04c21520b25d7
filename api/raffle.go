package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rifasolidaria/rifa/config"
	"github.com/rifasolidaria/rifa/internal/domain"
)

// RaffleHandler serves the static purchase instructions: price, PIX
// receiving details and the number range. The data is deployment config,
// so the handler has no service behind it.
type RaffleHandler struct {
	cfg config.RaffleConfig
}

type raffleResponse struct {
	Name           string `json:"name"`
	TotalNumbers   int    `json:"total_numbers"`
	NumbersPerPage int    `json:"numbers_per_page"`
	PriceCents     int64  `json:"price_cents"`
	PixKey         string `json:"pix_key"`
	PixName        string `json:"pix_name"`
	PixBank        string `json:"pix_bank"`
	Numbers        []int  `json:"numbers,omitempty"`
	TotalCents     int64  `json:"total_cents,omitempty"`
}

func NewRaffleHandler(cfg config.RaffleConfig) *RaffleHandler {
	return &RaffleHandler{cfg: cfg}
}

func (h *RaffleHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.info)
}

// info answers the instruction panel. With ?numbers=5,12 it also computes
// the total owed for that selection.
func (h *RaffleHandler) info(c *gin.Context) {
	resp := raffleResponse{
		Name:           h.cfg.Name,
		TotalNumbers:   h.cfg.TotalNumbers,
		NumbersPerPage: h.cfg.NumbersPerPage,
		PriceCents:     h.cfg.PriceCents,
		PixKey:         h.cfg.PixKey,
		PixName:        h.cfg.PixName,
		PixBank:        h.cfg.PixBank,
	}

	if raw := c.Query("numbers"); raw != "" {
		parsed := make([]int, 0)
		for _, part := range strings.Split(raw, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid numbers"})
				return
			}
			parsed = append(parsed, n)
		}
		selection := domain.NewSelection(parsed...)
		resp.Numbers = selection.Sorted()
		resp.TotalCents = int64(selection.Len()) * h.cfg.PriceCents
	}

	c.JSON(http.StatusOK, resp)
}
