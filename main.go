package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/didip/tollbooth/v7"
	"github.com/didip/tollbooth/v7/limiter"
	"github.com/didip/tollbooth_gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/mehmetcc/face-attendance-service/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/mehmetcc/face-attendance-service/internal/activity"
	"github.com/mehmetcc/face-attendance-service/internal/authentication"
	"github.com/mehmetcc/face-attendance-service/internal/camera"
	"github.com/mehmetcc/face-attendance-service/internal/enrollment"
	"github.com/mehmetcc/face-attendance-service/internal/feedback"
	"github.com/mehmetcc/face-attendance-service/internal/group"
	"github.com/mehmetcc/face-attendance-service/internal/ledger"
	"github.com/mehmetcc/face-attendance-service/internal/person"
	"github.com/mehmetcc/face-attendance-service/internal/recognition"
	"github.com/mehmetcc/face-attendance-service/internal/session"
	"github.com/mehmetcc/face-attendance-service/internal/training"
	"github.com/mehmetcc/face-attendance-service/internal/utils"
)

// @title           Face Attendance Service API
// @version         1.0
// @description     Camera appliance that enrolls faces, trains a recognizer and records one attendance mark per person, group and day.
//
// @host      localhost:5000
// @BasePath  /api/v1
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	// load config
	cfg, err := utils.LoadConfig(".env")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// init logger
	logger, err := utils.NewLogger(cfg.Server.Env)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	loc, err := cfg.Server.Location()
	if err != nil {
		logger.Fatal("invalid APP_TIMEZONE", zap.String("timezone", cfg.Server.Timezone), zap.Error(err))
	}

	// init database
	db, err := utils.InitDatabase(cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to the database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	if err := utils.Migrate(db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	//
	// HARDWARE AND MODEL
	//
	var source camera.Source
	switch cfg.Camera.Driver {
	case "synthetic":
		source = camera.NewSyntheticSource(cfg.Camera.Width, cfg.Camera.Height)
	default:
		source = camera.NewRpicamSource(
			cfg.Camera.Command,
			cfg.Camera.Index,
			cfg.Camera.Width,
			cfg.Camera.Height,
			cfg.Camera.CaptureTimeout,
			logger.Named("camera"),
		)
	}
	live := camera.NewLive()
	device := camera.NewDevice(source, live, logger.Named("camera"))
	if cfg.Camera.KillStale {
		resetCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := device.Reset(resetCtx); err != nil {
			logger.Warn("startup camera cleanup failed", zap.Error(err))
		}
		cancel()
	}

	engine := recognition.NewEngine(
		recognition.CenterDetector{Fraction: cfg.Recognition.FaceFraction},
		cfg.Recognition.ModelPath,
		logger.Named("recognition"),
	)
	if err := engine.Load(); err != nil {
		logger.Error("failed to load model artifact, training required", zap.Error(err))
	}

	panel := feedback.NewPanel(
		feedback.NewLogDisplay(logger.Named("panel")),
		feedback.Cooldowns{
			Success:   cfg.Feedback.SuccessCooldown,
			Duplicate: cfg.Feedback.DuplicateCooldown,
			Unknown:   cfg.Feedback.UnknownCooldown,
		},
		logger,
	)

	//
	// WIRE UP SERVICES
	//
	gate := activity.NewGate()

	personRepo := person.NewPersonRepository(db)
	personService := person.NewPersonService(personRepo, logger)

	groupRepo := group.NewGroupRepository(db)
	groupService := group.NewGroupService(groupRepo, personService, logger)

	ledgerRepo := ledger.NewLedgerRepository(db)
	ledgerService := ledger.NewLedgerService(ledgerRepo, loc, logger)

	store := enrollment.NewStore(cfg.Enrollment.DatasetDir)
	job := training.NewJob(gate, store, engine, engine, cfg.Training.Workers, logger.Named("training"))
	enrollmentService := enrollment.NewEnrollmentService(
		store,
		personService,
		device,
		gate,
		job,
		enrollment.Options{
			BurstFrames:   cfg.Enrollment.BurstFrames,
			BurstInterval: cfg.Enrollment.BurstInterval,
			AutoTrain:     cfg.Enrollment.AutoTrain,
		},
		logger.Named("enrollment"),
	)

	machine := session.NewMachine(
		gate,
		device,
		engine,
		personService,
		ledgerService,
		panel,
		session.NewMailbox(),
		session.Options{
			Alignment:       cfg.Session.AlignmentDuration,
			CaptureFrames:   cfg.Session.CaptureFrames,
			Ceiling:         cfg.Session.Ceiling,
			PreviewInterval: cfg.Session.PreviewInterval,
			MinConfidence:   cfg.Recognition.MinConfidence,
			DefaultGroupID:  cfg.Session.DefaultGroupID,
		},
		logger.Named("session"),
	)

	authService, err := authentication.NewAuthenticationService(
		cfg.Admin.Username,
		cfg.Admin.Password,
		authentication.NewRevocationStore(),
		logger,
		cfg.Token.AccessTokenSecret,
		cfg.Token.AccessTokenTTL,
	)
	if err != nil {
		logger.Fatal("failed to initialize authentication", zap.Error(err))
	}

	// init Gin router
	if cfg.Server.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), cors.Default())

	//
	// SWAGGER (protected by Basic Auth, not JWT)
	//
	if cfg.Admin.Password != "" {
		swaggerGroup := router.Group("/swagger", gin.BasicAuth(gin.Accounts{
			cfg.Admin.Username: cfg.Admin.Password,
		}))
		swaggerGroup.GET("", ginSwagger.WrapHandler(swaggerFiles.Handler))
		swaggerGroup.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// one start or login attempt per second per client
	limit := func() gin.HandlerFunc {
		lmt := tollbooth.NewLimiter(1, &limiter.ExpirableOptions{DefaultExpirationTTL: time.Hour})
		lmt.SetMessageContentType("application/json; charset=utf-8")
		lmt.SetMessage(`{"status":"busy","message":"too many requests"}`)
		return tollbooth_gin.LimitHandler(lmt)
	}

	api := router.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"activity": gate.Current().String(),
			"camera":   device.Owner(),
			"trained":  engine.Trained(),
		})
	})

	adminGroup := api.Group("/admin",
		authentication.AuthMiddleware(authService, logger),
		authentication.RoleMiddleware(person.Admin, logger),
	)

	authentication.NewAuthHandler(api, authService, logger, limit())
	person.NewPersonHandler(api, personService, logger)
	group.NewGroupHandler(api, adminGroup, groupService, logger)
	ledger.NewLedgerHandler(api, ledgerService, logger)
	enrollment.NewEnrollmentHandler(api, adminGroup, enrollmentService, logger)
	training.NewTrainingHandler(api, adminGroup, job, logger)
	session.NewSessionHandler(api, machine, logger, limit())
	camera.NewStreamHandler(api, live, logger)

	panel.Message("System Online", "Ready to Scan")

	//
	// START SERVER
	//
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}
	go func() {
		logger.Info("starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped gracefully")
	}

	// let in-flight background work release the camera
	machine.Wait()
	enrollmentService.Wait()
	job.Wait()
	panel.Message("System Offline", "")
}
