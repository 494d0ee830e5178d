package postgres

import "errors"

var (
	ErrFailedToParseConfig = errors.New("postgres: failed to parse database configuration")
	ErrFailedToOpenConn    = errors.New("postgres: failed to open database connection")
	ErrHealthcheckFailed   = errors.New("postgres: healthcheck failed")
	ErrSetDialect          = errors.New("postgres migrator: failed to set dialect")
	ErrApplyMigrations     = errors.New("postgres migrator: failed to apply migrations")
)
