package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rifasolidaria/rifa/api"
	"github.com/rifasolidaria/rifa/config"
	"github.com/rifasolidaria/rifa/internal/service/purchase"
	"github.com/rifasolidaria/rifa/internal/service/tickets"
)

// Run starts the HTTP server and blocks until context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, ticketSvc tickets.TicketUseCase, purchaseSvc purchase.PurchaseUseCase) error {
	srv := newServer(cfg, ticketSvc, purchaseSvc)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newServer(cfg *config.Config, ticketSvc tickets.TicketUseCase, purchaseSvc purchase.PurchaseUseCase) *http.Server {
	router := NewRouter(cfg, ticketSvc, purchaseSvc)

	return &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}
}

// NewRouter wires the API handlers onto a gin engine.
func NewRouter(cfg *config.Config, ticketSvc tickets.TicketUseCase, purchaseSvc purchase.PurchaseUseCase) *gin.Engine {
	router := gin.Default()

	v1 := router.Group("/api/v1")
	api.NewRaffleHandler(cfg.Raffle).Register(v1.Group("/raffle"))
	api.NewTicketHandler(ticketSvc).Register(v1.Group("/tickets"))
	api.NewPurchaseHandler(purchaseSvc).Register(v1.Group("/purchases"))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}
