package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nkotelnikov/flightbooking/api"
	"github.com/nkotelnikov/flightbooking/config"
	"github.com/nkotelnikov/flightbooking/internal/service/booking"
	"github.com/nkotelnikov/flightbooking/internal/service/flights"
)

// Run starts the HTTP API and blocks until the context is canceled or
// the server fails.
func Run(ctx context.Context, cfg *config.Config, flightSvc flights.FlightUseCase, bookingSvc booking.BookingUseCase) error {
	router := gin.New()
	router.Use(gin.Recovery())

	v1 := router.Group("/api/v1")
	api.NewFlightHandler(flightSvc).Register(v1.Group("/flights"))
	api.NewBookingHandler(bookingSvc).Register(v1.Group("/bookings"))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}
