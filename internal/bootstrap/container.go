package bootstrap

import (
	"github.com/planloop-io/planloop/internal/config"
	"github.com/planloop-io/planloop/internal/infra/cache"
	"github.com/planloop-io/planloop/internal/infra/db"
	"github.com/planloop-io/planloop/internal/infra/logger"
	"github.com/planloop-io/planloop/internal/modules/handler"
	"github.com/planloop-io/planloop/internal/modules/repo"
	"github.com/planloop-io/planloop/internal/modules/service"
	"github.com/planloop-io/planloop/internal/pkg/calendar"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg.Log.Level)
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		d, err := db.New(cfg)
		if err != nil {
			return nil, err
		}
		// [optional] auto migrate
		if cfg.Database.AutoMigrate {
			if err := db.Migrate(d); err != nil {
				return nil, err
			}
		}
		return d, nil
	})

	// Redis
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return cache.New(cfg), nil
	})

	// RabbitMQ Connection
	do.Provide(inj, func(i *do.Injector) (*amqp.Connection, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return amqp.Dial(cfg.RabbitMQ.URL)
	})

	// Clock
	do.Provide(inj, func(i *do.Injector) (calendar.Clock, error) {
		return calendar.NewClock(), nil
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.TemplateRepo, error) {
		return repo.NewTemplateRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.PlanRepo, error) {
		return repo.NewPlanRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.TaskRepo, error) {
		return repo.NewTaskRepo(do.MustInvoke[*gorm.DB](i)), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (service.TemplateService, error) {
		return service.NewTemplateService(do.MustInvoke[repo.TemplateRepo](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.PlanService, error) {
		return service.NewPlanService(
			do.MustInvoke[repo.PlanRepo](i),
			do.MustInvoke[repo.TaskRepo](i),
			do.MustInvoke[calendar.Clock](i),
			do.MustInvoke[*redis.Client](i),
			do.MustInvoke[*amqp.Connection](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.TaskService, error) {
		return service.NewTaskService(
			do.MustInvoke[repo.TaskRepo](i),
			do.MustInvoke[calendar.Clock](i),
			do.MustInvoke[*amqp.Connection](i),
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.PlanHandler, error) {
		return handler.NewPlanHandler(do.MustInvoke[service.PlanService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.TemplateHandler, error) {
		return handler.NewTemplateHandler(do.MustInvoke[service.TemplateService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.TaskHandler, error) {
		return handler.NewTaskHandler(do.MustInvoke[service.TaskService](i)), nil
	})

	return inj
}
