package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/planloop-io/planloop/docs"
	"github.com/planloop-io/planloop/internal/config"
	"github.com/planloop-io/planloop/internal/middleware"
	"github.com/planloop-io/planloop/internal/modules/handler"
	"github.com/planloop-io/planloop/internal/modules/serializer"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	Config          *config.Config
	DB              *gorm.DB
	Log             *zap.Logger
	PlanHandler     *handler.PlanHandler
	TemplateHandler *handler.TemplateHandler
	TaskHandler     *handler.TaskHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	if d.Config.Telemetry.Enabled && d.Config.Telemetry.OtlpEndpoint != "" {
		r.Use(middleware.OtelTracing(d.Config.App.Name))
		r.Use(middleware.TraceID())
	}

	r.Use(middleware.ZapLogger(d.Log))

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "ok"}) })

	// swagger
	r.GET("/swagger", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		v1.Use(middleware.ServiceAuth(d.Config))

		// ping endpoint
		v1.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "pong"}) })

		plan := v1.Group("/plan")
		{
			plan.POST("", d.PlanHandler.CreatePlan)
			plan.GET("/active", d.PlanHandler.GetActivePlan)
			plan.PUT("/:plan_id", d.PlanHandler.UpdatePlan)
			plan.GET("/:plan_id/removable_count", d.PlanHandler.GetRemovableCount)

			plan.POST("/:plan_id/expire_stale", d.TaskHandler.ExpireStale)
			plan.POST("/:plan_id/expire_all", d.TaskHandler.ExpireAll)
		}

		template := v1.Group("/template")
		{
			template.GET("", d.TemplateHandler.GetTemplates)
			template.POST("", d.TemplateHandler.CreateTemplate)
			template.PUT("/:template_id", d.TemplateHandler.UpdateTemplate)
			template.DELETE("/:template_id", d.TemplateHandler.DeleteTemplate)
		}

		task := v1.Group("/task")
		{
			task.GET("", d.TaskHandler.GetTasks)
			task.POST("", d.TaskHandler.CreateAdhocTask)
			task.GET("/adhoc", d.TaskHandler.GetAdhocPool)
			task.PUT("/:task_id/status", d.TaskHandler.UpdateTaskStatus)
		}
	}
	return r
}
