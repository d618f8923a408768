package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/meridianair/booking/internal/domain"
	"github.com/meridianair/booking/internal/service/booking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestPassengerHandler_create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewPassengerHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	input := booking.CreatePassengerInput{
		ConfirmationCode: "code-1",
		OriginCode:       "JFK",
		DestCode:         "LAX",
		SeatClass:        "business",
		SeatNumber:       3,
	}
	body, _ := json.Marshal(input)
	c.Request = httptest.NewRequest("POST", "/passengers", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	created := &domain.Passenger{ID: 2, BookingID: 1, FlightID: 7, SeatClass: domain.CabinBusiness, SeatNumber: 3}
	mockService.On("CreatePassenger", c.Request.Context(), input).Return(created, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response passengerResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "business", response.SeatClass)
	assert.Equal(t, int64(7), response.FlightID)

	mockService.AssertExpectations(t)
}

func TestPassengerHandler_create_ClassFull(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewPassengerHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(booking.CreatePassengerInput{SeatClass: "first"})
	c.Request = httptest.NewRequest("POST", "/passengers", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("CreatePassenger", c.Request.Context(), mock.Anything).Return(nil, domain.ErrCapacityExceeded)

	handler.create(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPassengerHandler_create_UnknownClass(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewPassengerHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(booking.CreatePassengerInput{SeatClass: "premium"})
	c.Request = httptest.NewRequest("POST", "/passengers", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("CreatePassenger", c.Request.Context(), mock.Anything).Return(nil, domain.ErrInvalidArgument)

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPassengerHandler_update(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewPassengerHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	input := booking.UpdatePassengerInput{GivenName: "Grace", SeatClass: "first"}
	body, _ := json.Marshal(input)
	c.Params = gin.Params{{Key: "id", Value: "2"}}
	c.Request = httptest.NewRequest("PUT", "/passengers/2", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	input.ID = 2
	updated := &domain.Passenger{ID: 2, GivenName: "Grace", SeatClass: domain.CabinFirst}
	mockService.On("UpdatePassenger", c.Request.Context(), input).Return(updated, nil)

	handler.update(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response passengerResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "first", response.SeatClass)
}

func TestPassengerHandler_update_InactiveBooking(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewPassengerHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(booking.UpdatePassengerInput{SeatClass: "first"})
	c.Params = gin.Params{{Key: "id", Value: "2"}}
	c.Request = httptest.NewRequest("PUT", "/passengers/2", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("UpdatePassenger", c.Request.Context(), mock.Anything).Return(nil, domain.ErrInvalidState)

	handler.update(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPassengerHandler_delete(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewPassengerHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "2"}}
	c.Request = httptest.NewRequest("DELETE", "/passengers/2", nil)

	mockService.On("DeletePassenger", c.Request.Context(), int64(2)).Return(nil)

	handler.delete(c)
	// gin defers a bodyless status until the next write; flush it so the
	// recorder sees the code the engine would send.
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockService.AssertExpectations(t)
}
