package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/meridianair/booking/internal/domain"
	"github.com/meridianair/booking/internal/service/payments"
)

type PaymentHandler struct {
	service payments.PaymentUseCase
}

type paymentRequest struct {
	StripeID  string `json:"stripe_id"`
	BookingID int64  `json:"booking_id"`
}

type paymentResponse struct {
	StripeID  string `json:"stripe_id"`
	BookingID int64  `json:"booking_id"`
	Refunded  bool   `json:"refunded"`
}

func NewPaymentHandler(service payments.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/:booking_id", h.getByBookingID)
	router.POST("/:booking_id/refund", h.refund)
}

func (h *PaymentHandler) create(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.service.CreatePayment(c.Request.Context(), &domain.Payment{
		StripeID:  req.StripeID,
		BookingID: req.BookingID,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, paymentResponse{StripeID: p.StripeID, BookingID: p.BookingID, Refunded: p.Refunded})
}

func (h *PaymentHandler) getByBookingID(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Param("booking_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	p, err := h.service.GetByBookingID(c.Request.Context(), bookingID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, paymentResponse{StripeID: p.StripeID, BookingID: p.BookingID, Refunded: p.Refunded})
}

func (h *PaymentHandler) refund(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Param("booking_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	if err := h.service.RefundBooking(c.Request.Context(), bookingID); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
