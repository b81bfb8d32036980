package api

import (
	"log"
	stdhttp "net/http"

	intconfig "farebox/internal/config"
	h "farebox/internal/http/handlers"
	"farebox/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.AllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	auth := middleware.Auth(env.JWTSecret)
	commuter := middleware.RequireRole(middleware.RoleCommuter)
	operator := middleware.RequireRole(middleware.RoleOperator)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)

		// Ticket lifecycle (commuter-owned)
		tickets := api.Group("/tickets", auth, commuter)
		tickets.POST("/scan", h.ScanTicket)
		tickets.GET("/active", h.GetActiveTicket)
		tickets.GET("/history", h.GetTicketHistory)
		tickets.GET("/:id", h.GetTicket)
		tickets.GET("/:id/halts", h.GetRemainingHalts)
		tickets.PUT("/:id/destination", h.SelectDestination)
		tickets.PUT("/:id/passengers", h.SetPassengers)
		tickets.POST("/:id/fare", h.ComputeFare)
		tickets.POST("/:id/confirm", h.ConfirmTicket)
		tickets.POST("/:id/cancel", h.CancelTicket)
		tickets.GET("/:id/eticket", h.GetTicketPDF)

		// Trip activation (operator)
		trips := api.Group("/trips", auth, operator)
		trips.POST("/start", h.StartTrip)
		trips.POST("/end", h.EndTrip)
		trips.GET("/active/:busCode", h.GetActiveTripByBusCode)

		// Operator verification by scan code, read-only
		api.GET("/verify/:scanCode", auth, operator, h.VerifyTicket)

		// Fleet management surface
		routes := api.Group("/routes", auth, operator)
		routes.GET("", h.GetRoutes)
		routes.GET("/:id", h.GetRouteByID)
		routes.POST("", h.CreateRoute)
		routes.PUT("/:id/status", h.UpdateRouteStatus)

		buses := api.Group("/buses", auth, operator)
		buses.GET("", h.GetBuses)
		buses.POST("", h.CreateBus)
	}

	return r
}
