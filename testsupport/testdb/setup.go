package testdb

import (
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	tcpg "github.com/JeroenBertels/glh-timer/testsupport/tcpostgres"
)

// InitTestDb hands out a pool on an empty timing schema: a throwaway
// local container by default, the database named by TESTDB_URL when
// the environment provides one (CI). Every call wipes the tables, each
// test seeds its own race.
func InitTestDb() *pgxpool.Pool {
	var pool *pgxpool.Pool

	if os.Getenv("TESTDB_URL") != "" {
		pool = tcpg.SetupExternalTestDb()
	} else {
		pool = tcpg.SetupTestDb()
	}
	tcpg.ClearAllTables(pool)
	return pool
}
