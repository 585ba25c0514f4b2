package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nkotelnikov/flightbooking/internal/domain"
	"github.com/nkotelnikov/flightbooking/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/", h.listMine)
	router.POST("/:id/payment", h.pay)
	router.DELETE("/:id", h.cancel)
}

type seatSelectionRequest struct {
	SeatNumber string `json:"seat_number" binding:"required"`
	Class      string `json:"class"`
}

type createBookingRequest struct {
	FlightID        int64                  `json:"flight_id" binding:"required"`
	Seats           []seatSelectionRequest `json:"seats" binding:"required"`
	Email           string                 `json:"email" binding:"required"`
	Phone           string                 `json:"phone"`
	SpecialRequests string                 `json:"special_requests"`
}

type paymentRequest struct {
	Method   string `json:"method" binding:"required"`
	Currency string `json:"currency"`
}

type ticketResponse struct {
	ID           int64  `json:"id"`
	TicketNumber string `json:"ticket_number"`
	FlightID     int64  `json:"flight_id"`
	SeatNumber   string `json:"seat_number"`
	Class        string `json:"class"`
	Status       string `json:"status"`
}

type paymentResponse struct {
	ID          int64  `json:"id"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	Method      string `json:"method"`
	Status      string `json:"status"`
}

type bookingResponse struct {
	ID               int64            `json:"id"`
	Reference        string           `json:"reference"`
	Status           string           `json:"status"`
	TotalAmountCents int64            `json:"total_amount_cents"`
	Email            string           `json:"email"`
	Phone            string           `json:"phone,omitempty"`
	SpecialRequests  string           `json:"special_requests,omitempty"`
	Tickets          []ticketResponse `json:"tickets"`
	Payment          *paymentResponse `json:"payment,omitempty"`
	CreatedAt        string           `json:"created_at"`
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	resp := bookingResponse{
		ID:               b.ID,
		Reference:        b.Reference,
		Status:           string(b.Status),
		TotalAmountCents: b.TotalAmountCents,
		Email:            b.Contact.Email,
		Phone:            b.Contact.Phone,
		SpecialRequests:  b.SpecialRequests,
		Tickets:          make([]ticketResponse, 0, len(b.Tickets)),
		CreatedAt:        b.CreatedAt.Format(time.RFC3339),
	}
	for _, t := range b.Tickets {
		resp.Tickets = append(resp.Tickets, ticketResponse{
			ID:           t.ID,
			TicketNumber: t.TicketNumber,
			FlightID:     t.FlightID,
			SeatNumber:   t.SeatNumber,
			Class:        string(t.Class),
			Status:       string(t.Status),
		})
	}
	if b.Payment != nil {
		resp.Payment = &paymentResponse{
			ID:          b.Payment.ID,
			AmountCents: b.Payment.AmountCents,
			Currency:    b.Payment.Currency,
			Method:      string(b.Payment.Method),
			Status:      string(b.Payment.Status),
		}
	}
	return resp
}

func (h *BookingHandler) create(c *gin.Context) {
	ident, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	seats := make([]domain.SeatSelection, 0, len(req.Seats))
	for _, s := range req.Seats {
		seats = append(seats, domain.SeatSelection{SeatNumber: s.SeatNumber, Class: domain.FareClass(s.Class)})
	}

	result, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		FlightID:        req.FlightID,
		CustomerID:      ident.UserID,
		Seats:           seats,
		Contact:         domain.ContactInfo{Email: req.Email, Phone: req.Phone},
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"booking":         toBookingResponse(result.Booking),
		"available_seats": result.Flight.AvailableSeats,
	})
}

func (h *BookingHandler) listMine(c *gin.Context) {
	ident, ok := requireIdentity(c)
	if !ok {
		return
	}

	bookings, err := h.service.UserBookings(c.Request.Context(), ident.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		resp = append(resp, toBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, gin.H{"count": len(resp), "bookings": resp})
}

func (h *BookingHandler) pay(c *gin.Context) {
	if _, ok := requireIdentity(c); !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.ProcessPayment(c.Request.Context(), id, booking.PaymentInput{
		Method:   domain.PaymentMethod(req.Method),
		Currency: req.Currency,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	resp := toBookingResponse(result.Booking)
	c.JSON(http.StatusOK, gin.H{"booking": resp, "payment": resp.Payment})
}

func (h *BookingHandler) cancel(c *gin.Context) {
	ident, ok := requireIdentity(c)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	cancelled, err := h.service.CancelBooking(c.Request.Context(), id, ident.UserID, ident.Role)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": toBookingResponse(cancelled)})
}
