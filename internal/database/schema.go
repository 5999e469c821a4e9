package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Booking dates are fixed-width text in both dialects so that every
// driver scans them back as "YYYY-MM-DD" strings.

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS laboratories (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name       VARCHAR(120) NOT NULL,
		created_at DATETIME NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS lab_rows (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		lab_id     BIGINT UNSIGNED NOT NULL,
		name       VARCHAR(8) NOT NULL,
		created_at DATETIME NOT NULL,
		UNIQUE KEY uq_lab_rows_name (lab_id, name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS workstations (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		row_id        BIGINT UNSIGNED NOT NULL,
		position      INT NOT NULL,
		label         VARCHAR(120) NOT NULL,
		base_status   VARCHAR(16) NOT NULL,
		specs         TEXT NOT NULL,
		software_list TEXT NOT NULL,
		version       INT UNSIGNED NOT NULL DEFAULT 1,
		UNIQUE KEY uq_workstations_coord (row_id, position)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS empty_slots (
		id       BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		row_id   BIGINT UNSIGNED NOT NULL,
		position INT NOT NULL,
		UNIQUE KEY uq_empty_slots_coord (row_id, position)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id             BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		workstation_id BIGINT UNSIGNED NOT NULL,
		booking_date   CHAR(10) NOT NULL,
		time_slot      VARCHAR(16) NOT NULL,
		student_name   VARCHAR(160) NOT NULL,
		purpose        VARCHAR(255) NOT NULL,
		queue_entry_id BIGINT UNSIGNED NULL,
		created_at     DATETIME NOT NULL,
		updated_at     DATETIME NOT NULL,
		UNIQUE KEY uq_bookings_slot (workstation_id, booking_date, time_slot)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS queue_entries (
		id               BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		lab_id           BIGINT UNSIGNED NOT NULL,
		student_name     VARCHAR(160) NOT NULL,
		purpose          VARCHAR(255) NOT NULL,
		batch_preference VARCHAR(16) NOT NULL,
		status           VARCHAR(16) NOT NULL,
		created_at       DATETIME NOT NULL,
		KEY idx_queue_lab (lab_id, created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS laboratories (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS lab_rows (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		lab_id     INTEGER NOT NULL,
		name       TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_lab_rows_name ON lab_rows (lab_id, name)`,
	`CREATE TABLE IF NOT EXISTS workstations (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		row_id        INTEGER NOT NULL,
		position      INTEGER NOT NULL,
		label         TEXT NOT NULL,
		base_status   TEXT NOT NULL,
		specs         TEXT NOT NULL,
		software_list TEXT NOT NULL,
		version       INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_workstations_coord ON workstations (row_id, position)`,
	`CREATE TABLE IF NOT EXISTS empty_slots (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		row_id   INTEGER NOT NULL,
		position INTEGER NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_empty_slots_coord ON empty_slots (row_id, position)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		workstation_id INTEGER NOT NULL,
		booking_date   TEXT NOT NULL,
		time_slot      TEXT NOT NULL,
		student_name   TEXT NOT NULL,
		purpose        TEXT NOT NULL,
		queue_entry_id INTEGER NULL,
		created_at     DATETIME NOT NULL,
		updated_at     DATETIME NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_bookings_slot ON bookings (workstation_id, booking_date, time_slot)`,
	`CREATE TABLE IF NOT EXISTS queue_entries (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		lab_id           INTEGER NOT NULL,
		student_name     TEXT NOT NULL,
		purpose          TEXT NOT NULL,
		batch_preference TEXT NOT NULL,
		status           TEXT NOT NULL,
		created_at       DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_queue_lab ON queue_entries (lab_id, created_at)`,
}

// Migrate creates the tables the SQL store needs.  It is idempotent.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	var stmts []string
	switch d {
	case MySQL:
		stmts = mysqlSchema
	case SQLite:
		stmts = sqliteSchema
	default:
		return fmt.Errorf("migrate: unknown dialect %q", d)
	}
	for i, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate: statement %d: %w", i+1, err)
		}
	}
	return nil
}
