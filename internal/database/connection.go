package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the global database connection
var DB *sqlx.DB

// Connect establishes a connection to the database.
// DB_TYPE selects the driver ("sqlite" by default, "postgres" via DATABASE_URL).
func Connect() error {
	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		dbType = "sqlite"
	}

	if dbType == "postgres" {
		url := os.Getenv("DATABASE_URL")
		if url == "" {
			return fmt.Errorf("DATABASE_URL environment variable is not set")
		}
		db, err := sqlx.Connect("postgres", url)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %v", err)
		}
		DB = db
		return initializeSchema()
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		// Create data directory if it doesn't exist
		dataDir := "data"
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %v", err)
		}
		dbPath = filepath.Join(dataDir, "phrasebot.db")
	}

	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}

	// Enable foreign keys
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return fmt.Errorf("failed to enable foreign keys: %v", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite doesn't support multiple writers
	db.SetMaxIdleConns(1)

	DB = db

	// Initialize schema
	return initializeSchema()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// schemaStatements returns the CREATE TABLE statements for a driver. The id
// column syntax is the only thing that differs between the drivers.
func schemaStatements(driverName string) []string {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if driverName == "postgres" {
		idColumn = "BIGSERIAL PRIMARY KEY"
	}

	return []string{
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS phrases (
			id %s,
			source_text TEXT NOT NULL UNIQUE,
			target_text TEXT NOT NULL,
			difficulty TEXT DEFAULT 'medium',
			context TEXT DEFAULT '',
			total_score REAL DEFAULT 0,
			learned BOOLEAN DEFAULT FALSE,
			is_active BOOLEAN DEFAULT TRUE,
			date_added TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`, idColumn),
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS attempts (
			id %s,
			user_id BIGINT NOT NULL,
			phrase_id BIGINT NOT NULL,
			answer TEXT NOT NULL,
			score REAL NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (phrase_id) REFERENCES phrases(id)
		)
	`, idColumn),
		`
		CREATE TABLE IF NOT EXISTS pending_exercises (
			user_id BIGINT PRIMARY KEY,
			phrase_id BIGINT NOT NULL,
			source_text TEXT NOT NULL,
			target_text TEXT NOT NULL,
			direction TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (phrase_id) REFERENCES phrases(id)
		)
	`,
		`
		CREATE TABLE IF NOT EXISTS user_settings (
			user_id BIGINT PRIMARY KEY,
			auto_send_enabled BOOLEAN DEFAULT FALSE,
			send_interval_hours INTEGER DEFAULT 1,
			last_sent_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`,
	}
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema() error {
	for _, stmt := range schemaStatements(DB.DriverName()) {
		if _, err := DB.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create table: %v", err)
		}
	}
	return nil
}
