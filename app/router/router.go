package router

import (
	"workerscope/app/handler"
	"workerscope/app/middleware"

	"github.com/gin-gonic/gin"
)

// Router Router
type Router struct {
	reportHandler *handler.ReportHandler
	apiKey        string
}

// NewRouter creates a new Router. A non-empty apiKey protects /v1.
func NewRouter(reportHandler *handler.ReportHandler, apiKey string) *Router {
	return &Router{
		reportHandler: reportHandler,
		apiKey:        apiKey,
	}
}

// Setup sets up routes
func (r *Router) Setup(engine *gin.Engine) {
	engine.Use(middleware.Recovery())
	engine.Use(middleware.Logger())

	engine.GET("/healthz", r.reportHandler.Health)

	v1 := engine.Group("/v1")
	v1.Use(middleware.AuthMiddleware(r.apiKey))
	{
		v1.GET("/report", r.reportHandler.GetReport)
		v1.GET("/workers/top", r.reportHandler.GetTopWorkers)
	}
}
