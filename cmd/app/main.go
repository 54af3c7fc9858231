package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"fulfillment/cmd"
	"fulfillment/internal/adapters/out/postgres/artifactrepo"
	"fulfillment/internal/adapters/out/postgres/deliveryrepo"
	"fulfillment/internal/adapters/out/postgres/eventrepo"
	"fulfillment/internal/adapters/out/postgres/jobrepo"
	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/adapters/out/postgres/revisionrepo"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/pkg/metrics"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()

	gormDB := mustOpenDatabase(configs)
	metrics.Register()

	app := cmd.NewCompositionRoot(configs, gormDB)

	recoverStalledJobs(&app)
	startJobs(&app)
	startWebServer(&app, configs.HTTPPort)
}

func getConfigs() cmd.Config {
	config := cmd.Config{
		HTTPPort:      goDotEnvVariable("HTTP_PORT"),
		DBHost:        goDotEnvVariable("DB_HOST"),
		DBPort:        goDotEnvVariable("DB_PORT"),
		DBUser:        goDotEnvVariable("DB_USER"),
		DBPassword:    goDotEnvVariable("DB_PASSWORD"),
		DBName:        goDotEnvVariable("DB_NAME"),
		DBSslMode:     goDotEnvVariable("DB_SSLMODE"),
		WebhookSecret: goDotEnvVariable("WEBHOOK_SECRET"),
		JWTSecret:     goDotEnvVariable("JWT_SECRET"),
		StorageBase:   goDotEnvVariable("STORAGE_BASE_URI"),
		GateKeywords:  splitKeywords(os.Getenv("GATE_KEYWORDS")),
		StageTimeout:  stageTimeout(os.Getenv("STAGE_TIMEOUT_SECONDS")),
	}
	return config
}

func goDotEnvVariable(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Fatalf("Error loading .env file")
	}
	return os.Getenv(key)
}

func splitKeywords(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func stageTimeout(raw string) time.Duration {
	seconds, err := time.ParseDuration(raw + "s")
	if raw == "" || err != nil {
		return commands.DefaultStageTimeout
	}
	return seconds
}

func mustOpenDatabase(configs cmd.Config) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser,
		configs.DBPassword, configs.DBName, configs.DBSslMode)

	// TranslateError maps driver duplicate-key errors onto
	// gorm.ErrDuplicatedKey, which idempotent intake depends on.
	gormDB, err := gorm.Open(postgresdriver.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}

	err = gormDB.AutoMigrate(
		&orderrepo.OrderDTO{},
		&jobrepo.JobDTO{},
		&artifactrepo.ArtifactDTO{},
		&deliveryrepo.DeliveryDTO{},
		&revisionrepo.RevisionDTO{},
		&eventrepo.EventDTO{},
	)
	if err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}

	return gormDB
}

// recoverStalledJobs requeues jobs left in PROCESSING by a previous crash.
// Runs before the cron loops start so recovered work is picked up first.
func recoverStalledJobs(app *cmd.CompositionRoot) {
	recoverCmd, err := commands.NewRecoverStalledJobsCommand()
	if err != nil {
		log.Fatalf("Error building recovery command: %v", err)
	}

	handler := app.CreateRecoverStalledJobsCommandHandler()
	recovered, err := handler.Handle(context.Background(), recoverCmd)
	if err != nil {
		log.Fatalf("Error recovering stalled jobs: %v", err)
	}
	if recovered > 0 {
		app.Logger().Info("Requeued stalled jobs", "count", recovered)
	}
}

func startJobs(app *cmd.CompositionRoot) {
	jobManager := app.CreateJobManager()
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("Error starting jobs: %v", err)
	}
}

func startWebServer(app *cmd.CompositionRoot, port string) {
	e := echo.New()
	app.CreateHTTPServer().RegisterRoutes(e)

	e.Logger.Fatal(e.Start(fmt.Sprintf("0.0.0.0:%s", port)))
}
