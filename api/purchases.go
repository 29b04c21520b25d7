package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rifasolidaria/rifa/internal/repository"
	"github.com/rifasolidaria/rifa/internal/service/purchase"
)

type PurchaseHandler struct {
	service purchase.PurchaseUseCase
}

type reservationResponse struct {
	Token      string `json:"token"`
	Numbers    []int  `json:"numbers"`
	BuyerName  string `json:"buyer_name"`
	BuyerPhone string `json:"buyer_phone"`
	TotalCents int64  `json:"total_cents"`
	ExpiresAt  string `json:"expires_at"`
}

type proofResponse struct {
	Token    string `json:"token"`
	Status   string `json:"status"`
	ProofURL string `json:"proof_url"`
}

func NewPurchaseHandler(service purchase.PurchaseUseCase) *PurchaseHandler {
	return &PurchaseHandler{service: service}
}

func (h *PurchaseHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.reserve)
	router.POST("/:token/proof", h.submitProof)
}

func (h *PurchaseHandler) reserve(c *gin.Context) {
	var req purchase.ReserveInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reservation, err := h.service.Reserve(c.Request.Context(), req)
	if err != nil {
		c.JSON(reserveStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, reservationResponse{
		Token:      reservation.Token,
		Numbers:    reservation.Numbers,
		BuyerName:  reservation.Buyer.Name,
		BuyerPhone: reservation.Buyer.Phone,
		TotalCents: reservation.TotalCents,
		ExpiresAt:  reservation.ExpiresAt.Format(time.RFC3339),
	})
}

func (h *PurchaseHandler) submitProof(c *gin.Context) {
	token := c.Param("token")

	fileHeader, err := c.FormFile("proof")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "proof image is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	proofURL, err := h.service.SubmitProof(c.Request.Context(), token, purchase.ProofInput{
		File:        file,
		Size:        fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Filename:    fileHeader.Filename,
	})
	if err != nil {
		c.JSON(proofStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, proofResponse{
		Token:    token,
		Status:   "paid",
		ProofURL: proofURL,
	})
}

func reserveStatus(err error) int {
	var taken *repository.NumberTakenError
	switch {
	case errors.As(err, &taken), errors.Is(err, purchase.ErrNumberLocked):
		return http.StatusConflict
	case errors.Is(err, purchase.ErrNameTooShort),
		errors.Is(err, purchase.ErrPhoneTooShort),
		errors.Is(err, purchase.ErrNoNumbersSelected),
		errors.Is(err, purchase.ErrNumberOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func proofStatus(err error) int {
	switch {
	case errors.Is(err, purchase.ErrReservationNotFound):
		return http.StatusNotFound
	case errors.Is(err, purchase.ErrReservationExpired):
		return http.StatusConflict
	case errors.Is(err, purchase.ErrProofTooLarge), errors.Is(err, purchase.ErrProofBadType):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
