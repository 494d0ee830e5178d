// Package postgres persists the tenant directory and the domain
// verification audit trail in PostgreSQL.
//
// It provides connection pooling via [github.com/jackc/pgx/v5/pgxpool]
// with retry logic during startup, embedded schema migrations applied
// through [github.com/pressly/goose/v3], and [Directory], the storage
// implementation behind hostname resolution and domain verification.
//
// Status-guarded transitions (pending -> verifying -> verified/failed) are
// expressed as conditional UPDATEs, so two instances verifying the same
// tenant race on a single row write and exactly one wins.
//
// # Configuration
//
// All settings are loaded from environment variables:
//
//	DATABASE_CONN_URL           - PostgreSQL connection URL (required)
//	DATABASE_MAX_OPEN_CONNS     - Maximum open connections (default: 10)
//	DATABASE_MIN_CONNS          - Minimum idle connections (default: 5)
//	DATABASE_HEALTHCHECK_PERIOD - Health check interval (default: 1m)
//	DATABASE_MAX_CONN_IDLE_TIME - Maximum connection idle time (default: 10m)
//	DATABASE_MAX_CONN_LIFETIME  - Maximum connection lifetime (default: 30m)
//	DATABASE_RETRY_ATTEMPTS     - Connection retry attempts (default: 3)
//	DATABASE_RETRY_INTERVAL     - Base retry interval (default: 5s)
//	DATABASE_MIGRATIONS_TABLE   - Migrations table name (default: schema_migrations)
//
// # Usage
//
//	pool, err := postgres.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer pool.Close()
//
//	if err := postgres.Migrate(ctx, pool, cfg.MigrationsTable, logger); err != nil {
//		log.Fatal(err)
//	}
//
//	dir := postgres.NewDirectory(pool)
package postgres
