package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/task-service/internal/api/http"
	"github.com/spec-kit/task-service/internal/api/http/handlers"
	"github.com/spec-kit/task-service/internal/auth"
	"github.com/spec-kit/task-service/internal/config"
	"github.com/spec-kit/task-service/internal/events"
	"github.com/spec-kit/task-service/internal/observability"
	"github.com/spec-kit/task-service/internal/persistence"
	"github.com/spec-kit/task-service/internal/repository"
	"github.com/spec-kit/task-service/internal/repository/memory"
	"github.com/spec-kit/task-service/internal/service"
	"github.com/spec-kit/task-service/internal/worker"
)

type repositories struct {
	users     repository.UserRepository
	tasks     repository.TaskRepository
	subtasks  repository.SubtaskRepository
	teams     repository.TeamRepository
	history   repository.TeamHistoryRepository
	timesheet repository.TimesheetRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	loc, err := cfg.App.Location()
	if err != nil {
		logger.Fatal("invalid time zone", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checks := map[string]handlers.Pinger{}
	var repos repositories
	if cfg.Postgres.DSN == "" {
		logger.Warn("POSTGRES_DSN not set, using in-memory storage")
		store := memory.NewStore()
		repos = repositories{
			users:     store.Users(),
			tasks:     store.Tasks(),
			subtasks:  store.Subtasks(),
			teams:     store.Teams(),
			history:   store.TeamHistory(),
			timesheet: store.Timesheet(),
		}
	} else {
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()

		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}

		pool := pg.PoolHandle()
		repos = repositories{
			users:     repository.NewUserRepository(pool),
			tasks:     repository.NewTaskRepository(pool),
			subtasks:  repository.NewSubtaskRepository(pool),
			teams:     repository.NewTeamRepository(pool),
			history:   repository.NewTeamHistoryRepository(pool),
			timesheet: repository.NewTimesheetRepository(pool),
		}
		checks["postgres"] = pg
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()
	checks["redis"] = redis
	previews := persistence.NewProgressPreviewStore(redis, cfg.Edit.PreviewTTL())

	clock := service.NewClock(loc)
	dispatcher := events.NewInMemoryDispatcher(logger)
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(*cfg, repos.users)
	taskService := service.NewTaskService(service.TaskDependencies{
		TaskRepo:   repos.tasks,
		TeamRepo:   repos.teams,
		Previews:   previews,
		Dispatcher: dispatcher,
		Clock:      clock,
		Logger:     logger,
	})
	subtaskService := service.NewSubtaskService(service.SubtaskDependencies{
		SubtaskRepo: repos.subtasks,
		TaskRepo:    repos.tasks,
		UserRepo:    repos.users,
		Previews:    previews,
		Dispatcher:  dispatcher,
		Clock:       clock,
		Logger:      logger,
	})
	teamService := service.NewTeamService(service.TeamDependencies{
		TeamRepo:    repos.teams,
		UserRepo:    repos.users,
		HistoryRepo: repos.history,
		Clock:       clock,
		Logger:      logger,
	})
	timesheetService := service.NewTimesheetService(service.TimesheetDependencies{
		TimesheetRepo: repos.timesheet,
		TaskRepo:      repos.tasks,
		SubtaskRepo:   repos.subtasks,
		UserRepo:      repos.users,
		Clock:         clock,
	})
	worker.StartRecomputeWorker(service.NewRecomputeService(service.RecomputeDependencies{
		Dispatcher:    dispatcher,
		TaskRepo:      repos.tasks,
		SubtaskRepo:   repos.subtasks,
		TeamRepo:      repos.teams,
		TimesheetRepo: repos.timesheet,
		Logger:        logger,
	}))

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, metrics, checks),
		Users:          handlers.NewUsersHandler(authService),
		Tasks:          handlers.NewTasksHandler(taskService),
		Subtasks:       handlers.NewSubtasksHandler(subtaskService),
		Teams:          handlers.NewTeamsHandler(teamService),
		Timesheet:      handlers.NewTimesheetHandler(timesheetService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), repos.users),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
