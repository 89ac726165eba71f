package db

import (
	"errors"
	"log"
	"os"
	"strings"
)

// RunMigrations rolls the schema forward without booting the HTTP server.
// With MIGRATIONS=1|true|yes it applies the SQL files in ./migrations straight
// against the DSN; otherwise it falls back to the connect-and-AutoMigrate path
// so --migrate-only behaves in development too.
func RunMigrations() error {
	if v := strings.ToLower(os.Getenv("MIGRATIONS")); v == "1" || v == "true" || v == "yes" {
		dsn := GetNormalizedDSN()
		if dsn == "" {
			return errors.New("DATABASE_DSN is empty, check the environment configuration")
		}
		log.Println("[DB] Applying SQL migrations from ./migrations")
		return runSQLMigrations(dsn)
	}
	log.Println("[DB] MIGRATIONS not set; using AutoMigrate via normal connect")
	_, err := ConnectAndMigrate()
	return err
}
