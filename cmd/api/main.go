package main

import (
	"context"
	"fmt"
	"log"
	"time"

	common_api "go-broker/internal/common/api"
	"go-broker/internal/config"
	"go-broker/internal/connectors"
	"go-broker/internal/database"
	"go-broker/internal/features/audit"
	"go-broker/internal/features/catalog"
	"go-broker/internal/features/delivery"
	"go-broker/internal/features/execution"
	"go-broker/internal/features/recurrence"
	"go-broker/internal/features/report"
	"go-broker/internal/features/schedule"
	"go-broker/internal/features/system"
	"go-broker/internal/logger"
	"go-broker/internal/middleware"
	"go-broker/pkg/condition"
	"go-broker/pkg/utils"

	_ "go-broker/docs" // Import swagger docs

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Use custom CORS middleware
	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),    // Cast to Interface
		fx.ResultTags(`group:"routes"`), // Add to Group
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route, logger *zap.Logger) {
	logger.Info("registering routes", zap.Int("count", len(routes)))
	for _, route := range routes {
		logger.Debug("setting up route", zap.String("api", fmt.Sprintf("%T", route)))
		route.Setup(app)
	}
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`, ``),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// InitializeIndexes ensures that necessary database indexes are created
func InitializeIndexes(lc fx.Lifecycle, reportRepo report.ReportRepository, scheduleRepo schedule.ScheduleRepository, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				// Use a background context with timeout for index creation
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := reportRepo.EnsureIndexes(ctx); err != nil {
					logger.Warn("failed to ensure report indexes", zap.Error(err))
				}
				if err := scheduleRepo.EnsureIndexes(ctx); err != nil {
					logger.Warn("failed to ensure schedule indexes", zap.Error(err))
				}
			}()
			return nil
		},
	})
}

// StartScheduler runs the schedule sweeper for the lifetime of the app
func StartScheduler(lc fx.Lifecycle, runner *schedule.Runner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return runner.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return runner.Stop(ctx)
		},
	})
}

// NewReportCompiler builds the query compiler for the dialect of the report store
func NewReportCompiler(rdb *database.ReportDB) (*report.Compiler, error) {
	dialect, err := condition.ParseDialect(rdb.Driver)
	if err != nil {
		return nil, err
	}
	return report.NewCompiler(dialect), nil
}

// @title           Broker Reporting API
// @version         1.0
// @description     Report definitions, execution and scheduled delivery for the brokerage back office.

// @host            localhost:8080
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Databases
			database.NewDatabase,
			database.NewReportDB,
			connectors.NewReportStorage,

			// Reporting core
			catalog.NewDefaultCatalog,
			NewReportCompiler,
			execution.NewEngine,
			delivery.NewMailer,
			system.NewHub,

			// Initialize Repository
			audit.NewAuditRepository,
			report.NewReportRepository,
			schedule.NewScheduleRepository,
			delivery.NewDeliveryRepository,

			audit.NewAuditService,
			delivery.NewDeliveryService,
			report.NewReportService,
			schedule.NewRunner,
			schedule.NewScheduleService,

			// Interface Adapters to break circular dependencies and satisfy Fx
			func(r report.ReportRepository) schedule.ReportLookup { return r },
			func(s schedule.ScheduleService) report.ScheduleDisabler { return s },
			func(h *system.Hub) schedule.Publisher { return h },

			// Initialize Controller
			catalog.NewCatalogController,
			report.NewReportController,
			schedule.NewScheduleController,
			recurrence.NewRecurrenceController,
			audit.NewAuditController,
			system.NewDebugController,
			system.NewWebSocketController,

			// Initialize API Routes
			AsRoute(catalog.NewCatalogApi),
			AsRoute(report.NewReportApi),
			AsRoute(schedule.NewScheduleApi),
			AsRoute(recurrence.NewRecurrenceApi),
			AsRoute(audit.NewAuditApi),
			AsRoute(system.NewDebugApi),
			AsRoute(system.NewHealthApi),
			AsRoute(system.NewSwaggerApi),
			AsRoute(system.NewWebSocketApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			func(cfg *config.Config) { utils.SetSecret(cfg.JWTSecret) },
			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			StartScheduler,
			InitializeIndexes,
		),
	)

	app.Run()
}
