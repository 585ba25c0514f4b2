package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nkotelnikov/flightbooking/internal/domain"
	"github.com/nkotelnikov/flightbooking/internal/repository"
	"github.com/nkotelnikov/flightbooking/internal/service/booking"
	"github.com/nkotelnikov/flightbooking/internal/service/flights"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/search", h.search)
	router.GET("/:id", h.get)
	router.POST("/", h.create)
	router.PUT("/:id", h.update)
	router.DELETE("/:id", h.remove)
}

type flightRequest struct {
	FlightNumber  string    `json:"flight_number" binding:"required"`
	Airline       string    `json:"airline" binding:"required"`
	Origin        string    `json:"origin" binding:"required"`
	Destination   string    `json:"destination" binding:"required"`
	DepartureTime time.Time `json:"departure_time" binding:"required"`
	ArrivalTime   time.Time `json:"arrival_time" binding:"required"`
	Capacity      int       `json:"capacity" binding:"required"`
	PriceCents    int64     `json:"price_cents" binding:"required"`
}

type flightResponse struct {
	ID             int64  `json:"id"`
	FlightNumber   string `json:"flight_number"`
	Airline        string `json:"airline"`
	Origin         string `json:"origin"`
	Destination    string `json:"destination"`
	DepartureTime  string `json:"departure_time"`
	ArrivalTime    string `json:"arrival_time"`
	Capacity       int    `json:"capacity"`
	AvailableSeats int    `json:"available_seats"`
	PriceCents     int64  `json:"price_cents"`
}

func toFlightResponse(f *domain.Flight) flightResponse {
	return flightResponse{
		ID:             f.ID,
		FlightNumber:   f.FlightNumber,
		Airline:        f.Airline,
		Origin:         f.Origin,
		Destination:    f.Destination,
		DepartureTime:  f.DepartureTime.Format(time.RFC3339),
		ArrivalTime:    f.ArrivalTime.Format(time.RFC3339),
		Capacity:       f.Capacity,
		AvailableSeats: f.AvailableSeats,
		PriceCents:     f.PriceCents,
	}
}

func toFlightResponses(list []domain.Flight) []flightResponse {
	resp := make([]flightResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toFlightResponse(&list[i]))
	}
	return resp
}

func (h *FlightHandler) list(c *gin.Context) {
	flights, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toFlightResponses(flights))
}

func (h *FlightHandler) search(c *gin.Context) {
	criteria := repository.FlightSearch{
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
	}
	if raw := c.Query("departure_date"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "departure_date must be YYYY-MM-DD"})
			return
		}
		criteria.DepartureDate = day
	}

	flights, err := h.service.Search(c.Request.Context(), criteria)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toFlightResponses(flights))
}

func (h *FlightHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponse(flight))
}

func (h *FlightHandler) create(c *gin.Context) {
	if !requireStaff(c) {
		return
	}

	var req flightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flight := &domain.Flight{
		FlightNumber:  req.FlightNumber,
		Airline:       req.Airline,
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureTime: req.DepartureTime,
		ArrivalTime:   req.ArrivalTime,
		Capacity:      req.Capacity,
		PriceCents:    req.PriceCents,
	}
	if err := h.service.Create(c.Request.Context(), flight); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFlightResponse(flight))
}

func (h *FlightHandler) update(c *gin.Context) {
	if !requireStaff(c) {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req flightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flight := &domain.Flight{
		ID:            id,
		FlightNumber:  req.FlightNumber,
		Airline:       req.Airline,
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureTime: req.DepartureTime,
		ArrivalTime:   req.ArrivalTime,
		Capacity:      req.Capacity,
		PriceCents:    req.PriceCents,
	}
	if err := h.service.Update(c.Request.Context(), flight); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponse(flight))
}

func (h *FlightHandler) remove(c *gin.Context) {
	if !requireStaff(c) {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func requireStaff(c *gin.Context) bool {
	ident, ok := requireIdentity(c)
	if !ok {
		return false
	}
	if ident.Role != booking.RoleStaff && ident.Role != booking.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "staff role required"})
		return false
	}
	return true
}
