package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rifasolidaria/rifa/internal/service/tickets"
)

type TicketHandler struct {
	service tickets.TicketUseCase
}

func NewTicketHandler(service tickets.TicketUseCase) *TicketHandler {
	return &TicketHandler{service: service}
}

func (h *TicketHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/lookup", h.lookup)
}

// list serves the number grid. Without a page parameter the whole grid is
// returned; with one, a single fixed-size page.
func (h *TicketHandler) list(c *gin.Context) {
	if pageParam := c.Query("page"); pageParam != "" {
		page, err := strconv.Atoi(pageParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
			return
		}
		gridPage, err := h.service.GridPage(c.Request.Context(), page)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gridPage)
		return
	}

	grid, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, grid)
}

type lookupResponse struct {
	BuyerName string      `json:"buyer_name,omitempty"`
	Tickets   interface{} `json:"tickets"`
}

// lookup returns the tickets bought with a phone number. Zero tickets is a
// 200 with an empty list, distinct from a lookup failure.
func (h *TicketHandler) lookup(c *gin.Context) {
	phone := c.Query("phone")

	result, err := h.service.ListByPhone(c.Request.Context(), phone)
	if err != nil {
		if errors.Is(err, tickets.ErrInvalidPhone) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := lookupResponse{Tickets: result}
	if len(result) > 0 {
		resp.BuyerName = result[0].BuyerName
	}
	c.JSON(http.StatusOK, resp)
}
