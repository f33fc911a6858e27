// README: API gateway; builds the gin engine and registers every route.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mashwar/internal/http/handlers"
	"mashwar/internal/http/middleware"
	"mashwar/internal/modules/location"
	"mashwar/internal/modules/offer"
	"mashwar/internal/modules/order"
)

type ServerDeps struct {
	Orders *order.Service
	Offers *offer.Service
	Graph  *location.Graph
	Logger *slog.Logger
}

type Server struct {
	orders *order.Service
	offers *offer.Service
	graph  *location.Graph
	logger *slog.Logger
}

func NewServer(deps ServerDeps) *Server {
	return &Server{
		orders: deps.Orders,
		offers: deps.Offers,
		graph:  deps.Graph,
		logger: deps.Logger,
	}
}

// Routes wires middleware and the full route table. Authentication is
// intentionally absent: caller identity travels in request bodies.
func (s *Server) Routes() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Recovery(s.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(s.logger))
	r.Use(middleware.Metrics())

	orderHandler := handlers.NewOrderHandler(s.orders, s.offers)
	r.POST("/api/orders/taxi", orderHandler.CreateTaxi)
	r.POST("/api/orders/food", orderHandler.CreateFood)
	r.POST("/api/orders/pharmacy", orderHandler.CreatePharmacy)
	r.POST("/api/orders/custom", orderHandler.CreateCustomRestaurant)
	r.GET("/api/orders/:id", orderHandler.Get)
	r.GET("/api/customers/:id/orders", orderHandler.ListByCustomer)
	r.POST("/api/orders/:id/cancel", orderHandler.Cancel)
	r.POST("/api/orders/:id/accept", orderHandler.Accept)
	r.POST("/api/orders/:id/rate", orderHandler.Rate)
	r.GET("/api/orders/:id/offers", orderHandler.ListOffers)

	driverHandler := handlers.NewDriverHandler(s.orders, s.offers)
	r.GET("/api/orders/open", driverHandler.ListOpen)
	r.POST("/api/orders/:id/offers", driverHandler.SubmitOffer)
	r.POST("/api/orders/:id/start", driverHandler.Start)
	r.POST("/api/orders/:id/delivered", driverHandler.Delivered)

	locationHandler := handlers.NewLocationHandler(s.graph)
	r.GET("/api/villages", locationHandler.Villages)

	wsHandler := handlers.NewWSHandler(s.orders, s.offers, s.logger)
	r.GET("/ws/orders/open", wsHandler.OpenOrders)
	r.GET("/ws/orders/:id", wsHandler.Order)
	r.GET("/ws/orders/:id/offers", wsHandler.OrderOffers)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
