package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/zigbee-shepherd/shepherd/pkg/api/handlers"
	"github.com/zigbee-shepherd/shepherd/pkg/shepherd"
)

// Router holds the Gin engine and the Shepherd it exposes over HTTP.
type Router struct {
	engine      *gin.Engine
	shepherd    *shepherd.Shepherd
	broadcaster *Broadcaster
}

// NewRouter creates a new API router over a started (or startable)
// Shepherd. broadcaster must already be wired as the Shepherd's
// Options.Sink.Ind (via broadcaster.Publish) before Start is called, so
// SSE clients see every event from the moment the coordinator comes up.
func NewRouter(s *shepherd.Shepherd, broadcaster *Broadcaster) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	SetupMiddleware(engine)

	router := &Router{
		engine:      engine,
		shepherd:    s,
		broadcaster: broadcaster,
	}

	router.setupRoutes()

	return router
}

// setupRoutes configures all API routes.
func (r *Router) setupRoutes() {
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(301, "/swagger/index.html")
	})

	healthHandler := handlers.NewHealthHandler(r.shepherd)
	r.engine.GET("/health", healthHandler.Health)

	v1 := r.engine.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Health)

		networkHandler := handlers.NewNetworkHandler(r.shepherd, r.broadcaster)
		network := v1.Group("/network")
		{
			network.GET("/info", networkHandler.Info)
			network.POST("/permit-join", networkHandler.PermitJoin)
			network.GET("/lqi-scan", networkHandler.LqiScan)
			network.GET("/events", networkHandler.Events)
		}

		devicesHandler := handlers.NewDevicesHandler(r.shepherd)
		controlHandler := handlers.NewControlHandler(r.shepherd)
		devices := v1.Group("/devices")
		{
			devices.GET("", devicesHandler.ListDevices)
			devices.GET("/:ieee", devicesHandler.GetDevice)
			devices.DELETE("/:ieee", devicesHandler.RemoveDevice)
			devices.GET("/:ieee/routes", devicesHandler.GetRoutingTable)
			devices.GET("/:ieee/lqi", devicesHandler.GetLqi)

			endpoints := devices.Group("/:ieee/endpoints/:ep")
			{
				endpoints.POST("/read", controlHandler.ReadAttribute)
				endpoints.POST("/write", controlHandler.WriteAttribute)
				endpoints.POST("/report", controlHandler.ReportAttribute)
				endpoints.POST("/bind", controlHandler.Bind)
				endpoints.DELETE("/bind", controlHandler.Unbind)
			}
		}
	}
}

// Run starts the HTTP server.
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
