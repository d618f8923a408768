package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meridianair/booking/internal/domain"
	"github.com/meridianair/booking/internal/service/flights"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

type flightResponse struct {
	ID            int64     `json:"id"`
	OriginCode    string    `json:"origin_code"`
	OriginCity    string    `json:"origin_city"`
	DestCode      string    `json:"dest_code"`
	DestCity      string    `json:"dest_city"`
	AirplaneModel string    `json:"airplane_model"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
	Active        bool      `json:"active"`

	AvailableFirst    int `json:"available_first"`
	AvailableBusiness int `json:"available_business"`
	AvailableEconomy  int `json:"available_economy"`

	PriceFirst    float64 `json:"price_first"`
	PriceBusiness float64 `json:"price_business"`
	PriceEconomy  float64 `json:"price_economy"`
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
}

func (h *FlightHandler) list(c *gin.Context) {
	flights, err := h.service.List(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	responses := make([]flightResponse, len(flights))
	for i := range flights {
		responses[i] = toFlightResponse(&flights[i])
	}
	c.JSON(http.StatusOK, responses)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flight id"})
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponse(flight))
}

// toFlightResponse publishes remaining availability per class, not the raw
// reserved counters.
func toFlightResponse(f *domain.Flight) flightResponse {
	return flightResponse{
		ID:                f.ID,
		OriginCode:        f.OriginCode,
		OriginCity:        f.OriginCity,
		DestCode:          f.DestCode,
		DestCity:          f.DestCity,
		AirplaneModel:     f.AirplaneModel,
		DepartureTime:     f.DepartureTime,
		ArrivalTime:       f.ArrivalTime,
		Active:            f.Active,
		AvailableFirst:    f.MaxFirst - f.ReservedFirst,
		AvailableBusiness: f.MaxBusiness - f.ReservedBusiness,
		AvailableEconomy:  f.MaxEconomy - f.ReservedEconomy,
		PriceFirst:        f.PriceFirst,
		PriceBusiness:     f.PriceBusiness,
		PriceEconomy:      f.PriceEconomy,
	}
}
