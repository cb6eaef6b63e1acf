package db

import (
	"database/sql"

	"github.com/shortenhub/shorten/internal/infrastructure/logger"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// OpenSQLite opens (creating if needed) the device-local store file.
func OpenSQLite(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// The local store is a single-profile file; one writer is all we want.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}

	logger.Info("Local store opened", zap.String("path", path))
	return conn, nil
}
