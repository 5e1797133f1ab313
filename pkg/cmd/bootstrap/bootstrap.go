package bootstrap

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	pgxtrace "github.com/pgx-contrib/pgxtrace"
	otlpruntime "go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/JeroenBertels/glh-timer/log"
	"github.com/JeroenBertels/glh-timer/pkg/config"
	"github.com/JeroenBertels/glh-timer/pkg/db/postgres"
	"github.com/JeroenBertels/glh-timer/pkg/utils"
)

// PrepareLogger builds the main and sql loggers from the log flags and
// installs the main logger as package default. Commands call this once
// before touching the database.
func PrepareLogger() (logger, sqlLogger *log.Logger) {
	switch config.LogFormat {
	case "json":
		logger = log.New(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
		sqlLogger = log.New(
			os.Stderr,
			parseLogLevel(config.SQLLogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	default:
		logger = log.DevLogger(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
		sqlLogger = log.DevLogger(
			os.Stderr,
			parseLogLevel(config.SQLLogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}
	log.ResetDefault(logger)
	return logger, sqlLogger
}

// InitPool waits for the database, sets up optional telemetry and
// returns the connection pool plus a cleanup function.
func InitPool(ctx context.Context) (*pgxpool.Pool, func(), error) {
	_, sqlLogger := PrepareLogger()

	if err := waitForDatabase(); err != nil {
		return nil, nil, err
	}

	var telemetry *config.Telemetry
	pgTracer := pgxtrace.CompositeQueryTracer{
		postgres.NewMyTracer(sqlLogger, log.DebugLevel),
	}
	if config.EnableTelemetry {
		log.Info("enabling telemetry")
		var err error
		if telemetry, err = config.SetupTelemetry(ctx); err == nil {
			pgTracer = append(pgTracer, postgres.NewOtlpTracer())
		} else {
			log.Warn("could not setup telemetry", log.ErrorField(err))
		}
		err = otlpruntime.Start(
			otlpruntime.WithMinimumReadMemStatsInterval(time.Second))
		if err != nil {
			log.Warn("could not start runtime metrics", log.ErrorField(err))
		}
	}

	pool := postgres.InitWithURL(config.DB, postgres.WithTracer(pgTracer))
	cleanup := func() {
		pool.Close()
		if telemetry != nil {
			telemetry.Shutdown()
		}
	}
	return pool, cleanup, nil
}

// waitForDatabase retries the tcp connect until the configured timeout.
// This is the startup policy for transient store failures: bounded
// retry, then fail hard.
func waitForDatabase() error {
	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		log.Warn("invalid duration value, using default 60s",
			log.ErrorField(err))
		timeout = 60 * time.Second
	}
	postgresAddr := utils.ExtractFromDBURL(config.DB)
	return utils.WaitForTCP(postgresAddr, timeout)
}

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}
