package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/meridianair/booking/internal/domain"
	"github.com/meridianair/booking/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type passengerResponse struct {
	ID           int64  `json:"id"`
	BookingID    int64  `json:"booking_id"`
	FlightID     int64  `json:"flight_id"`
	DiscountType string `json:"discount_type"`
	GivenName    string `json:"given_name"`
	FamilyName   string `json:"family_name"`
	SeatClass    string `json:"seat_class"`
	SeatNumber   int    `json:"seat_number"`
	CheckInGroup int    `json:"check_in_group"`
}

type bookingResponse struct {
	ID               int64               `json:"id"`
	ConfirmationCode string              `json:"confirmation_code"`
	Active           bool                `json:"active"`
	LayoverCount     int                 `json:"layover_count"`
	TotalPrice       float64             `json:"total_price"`
	ContactEmail     string              `json:"contact_email"`
	Passengers       []passengerResponse `json:"passengers,omitempty"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:confirmation_code", h.getByConfirmationCode)
	router.POST("", h.create)
	router.PUT("/:id", h.update)
	router.DELETE("/:id", h.delete)
}

func (h *BookingHandler) list(c *gin.Context) {
	bookings, err := h.service.ListBookings(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	responses := make([]bookingResponse, len(bookings))
	for i := range bookings {
		responses[i] = toBookingResponse(&bookings[i])
	}
	c.JSON(http.StatusOK, responses)
}

func (h *BookingHandler) getByConfirmationCode(c *gin.Context) {
	b, err := h.service.GetByConfirmationCode(c.Request.Context(), c.Param("confirmation_code"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) create(c *gin.Context) {
	var input booking.CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(b))
}

func (h *BookingHandler) update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	var input booking.UpdateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input.ID = id

	b, err := h.service.UpdateBooking(c.Request.Context(), input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	if err := h.service.DeleteBooking(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	resp := bookingResponse{
		ID:               b.ID,
		ConfirmationCode: b.ConfirmationCode,
		Active:           b.Active,
		LayoverCount:     b.LayoverCount,
		TotalPrice:       b.TotalPrice,
		ContactEmail:     b.ContactEmail,
	}
	for _, p := range b.Passengers {
		resp.Passengers = append(resp.Passengers, toPassengerResponse(&p))
	}
	return resp
}

func toPassengerResponse(p *domain.Passenger) passengerResponse {
	return passengerResponse{
		ID:           p.ID,
		BookingID:    p.BookingID,
		FlightID:     p.FlightID,
		DiscountType: p.DiscountType,
		GivenName:    p.GivenName,
		FamilyName:   p.FamilyName,
		SeatClass:    p.SeatClass.String(),
		SeatNumber:   p.SeatNumber,
		CheckInGroup: p.CheckInGroup,
	}
}
