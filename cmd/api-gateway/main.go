package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/internship-portal-api/api/swagger"
	"github.com/noah-isme/internship-portal-api/internal/handler"
	"github.com/noah-isme/internship-portal-api/internal/middleware"
	"github.com/noah-isme/internship-portal-api/internal/repository"
	"github.com/noah-isme/internship-portal-api/internal/router"
	"github.com/noah-isme/internship-portal-api/internal/service"
	"github.com/noah-isme/internship-portal-api/pkg/cache"
	"github.com/noah-isme/internship-portal-api/pkg/config"
	"github.com/noah-isme/internship-portal-api/pkg/database"
	"github.com/noah-isme/internship-portal-api/pkg/logger"
	"github.com/noah-isme/internship-portal-api/pkg/mail"
	corsmiddleware "github.com/noah-isme/internship-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/internship-portal-api/pkg/middleware/requestid"
	"github.com/noah-isme/internship-portal-api/pkg/storage"
)

// @title Internship Portal API
// @version 1.0.0
// @description Universities, students, internships and the assignment and completion workflow.
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := database.NewStore(cfg.Database, database.OpenPostgres)
	db, err := store.Ensure(ctx)
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck

	if cfg.Database.RunMigrations {
		if err := database.RunMigrations(db.DB, logr); err != nil {
			return err
		}
	}

	metrics := service.NewMetricsService()
	checks := map[string]handler.Pinger{"database": store}

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			redisRepo := repository.NewCacheRepository(client, logr)
			defer redisRepo.Close() //nolint:errcheck
			cacheRepo = redisRepo
			checks["redis"] = redisRepo
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cacheRepo != nil)

	fileStore, err := storage.New(cfg.Storage)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL)
	files := service.NewFileService(fileStore, signer, cfg.Storage.MaxUploadBytes, cfg.APIPrefix+"/files/download", logr)

	notifications := service.NewNotificationService(mail.New(cfg.Mail, logr), cfg.Mail, metrics, logr)
	notifications.Start(ctx)
	defer notifications.Stop()

	universityRepo := repository.NewUniversityRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	internshipRepo := repository.NewInternshipRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	validate := service.NewValidator()
	audit := service.NewAuditService(repository.NewAuditRepository(db), logr)
	assignments := service.NewAssignmentService(internshipRepo, studentRepo, facultyRepo, cacheSvc, metrics, cfg.Assignment, logr)
	auth := service.NewAuthService(
		repository.NewUserRepository(db),
		repository.NewPasswordResetRepository(db),
		universityRepo,
		notifications,
		audit,
		validate,
		logr,
		service.AuthConfig{
			AccessTokenSecret: cfg.JWT.Secret,
			AccessTokenExpiry: cfg.JWT.Expiration,
			Issuer:            cfg.JWT.Issuer,
			ResetTokenTTL:     cfg.JWT.ResetTokenTTL,
		},
	)

	if cfg.Reconciler.Enabled {
		reconciler := service.NewReconciler(assignments, cfg.Reconciler.Schedule, logr)
		if err := reconciler.Start(); err != nil {
			return err
		}
		defer reconciler.Stop()
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	router.Register(r, router.Handlers{
		Auth:         handler.NewAuthHandler(auth),
		Universities: handler.NewUniversityHandler(service.NewUniversityService(universityRepo, validate, logr)),
		Departments:  handler.NewDepartmentHandler(service.NewDepartmentService(departmentRepo, universityRepo, validate, logr)),
		Faculty:      handler.NewFacultyHandler(service.NewFacultyService(facultyRepo, universityRepo, departmentRepo, validate, logr)),
		Students: handler.NewStudentHandler(
			service.NewStudentService(studentRepo, universityRepo, departmentRepo, files, cacheSvc, validate, logr),
			service.NewImportService(studentRepo, universityRepo, departmentRepo, cacheSvc, metrics, validate, logr),
			files.MaxBytes(),
		),
		Internships: handler.NewInternshipHandler(service.NewInternshipService(internshipRepo, universityRepo, departmentRepo, assignments, cacheSvc, validate, logr)),
		Assignments: handler.NewAssignmentHandler(assignments, service.NewExportService(internshipRepo, studentRepo, logr)),
		Tasks:       handler.NewTaskHandler(service.NewTaskService(taskRepo, internshipRepo, validate, logr)),
		Submissions: handler.NewSubmissionHandler(service.NewSubmissionService(submissionRepo, taskRepo, studentRepo, files, validate, logr), files.MaxBytes()),
		Files:       handler.NewFileHandler(files),
		Ops:         handler.NewMetricsHandler(metrics, checks),
	}, router.Options{Prefix: cfg.APIPrefix, Tokens: auth, Audit: audit})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
