//nolint:errcheck // testsetup
package tcpostgres

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/JeroenBertels/glh-timer/pkg/db/migrate"
	database "github.com/JeroenBertels/glh-timer/pkg/db/postgres"
)

// SetupTestDb creates a pg connection pool for a containerized test
// database with the current schema applied.
func SetupTestDb() *pgxpool.Pool {
	ctx := context.Background()
	port, err := nat.NewPort("tcp", "5432")
	if err != nil {
		log.Fatal(err)
	}
	container, err := SetupPostgres(ctx,
		WithPort(port.Port()),
		WithInitialDatabase("postgres", "password", "postgres"),
		WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
		WithName("glh-timer-test"),
	)
	if err != nil {
		log.Fatal(err)
	}
	containerPort, _ := container.MappedPort(ctx, port)
	host, _ := container.Host(ctx)
	dbURL := fmt.Sprintf("postgresql://postgres:password@%s:%s/postgres",
		host, containerPort.Port())

	if err = migrate.MigrateDb(dbURL); err != nil {
		log.Fatal(err)
	}

	return database.InitWithURL(dbURL)
}

// SetupExternalTestDb connects to the database named by TESTDB_URL and
// applies the current schema. Used on CI where a database service is
// already running.
func SetupExternalTestDb() *pgxpool.Pool {
	dbURL := os.Getenv("TESTDB_URL")
	if err := migrate.MigrateDb(dbURL); err != nil {
		log.Fatal(err)
	}
	return database.InitWithURL(dbURL)
}

func ClearAccountTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from account")
}

func ClearStartTimeTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from stage_start_time")
}

func ClearTimingEventTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from timing_event")
}

func ClearParticipantTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from participant")
}

func ClearStageTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from stage")
}

func ClearRaceTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from race")
}

func ClearAllTables(pool *pgxpool.Pool) {
	ClearAccountTable(pool)
	ClearStartTimeTable(pool)
	ClearTimingEventTable(pool)
	ClearParticipantTable(pool)
	ClearStageTable(pool)
	ClearRaceTable(pool)
}
