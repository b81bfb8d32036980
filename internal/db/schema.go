package db

import (
	"database/sql"
)

type QueryRower interface {
	QueryRow(query string, args ...any) *sql.Row
}

func HasTable(q QueryRower, table string) bool {
	var name sql.NullString
	err := q.QueryRow(`
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		LIMIT 1
	`, table).Scan(&name)
	if err != nil {
		// Bad connections read as absent; callers retry on the next request.
		return false
	}
	return name.Valid && name.String != ""
}

func HasColumn(q QueryRower, table, column string) bool {
	var name sql.NullString
	err := q.QueryRow(`
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		  AND column_name = ?
		LIMIT 1
	`, table, column).Scan(&name)
	if err != nil {
		return false
	}
	return name.Valid && name.String != ""
}

// EnsureSchema creates any missing engine tables. Idempotent; meant for dev
// and first boot, production schemas are migrated out of band.
func EnsureSchema(db *sql.DB) error {
	if db == nil {
		return sql.ErrConnDone
	}
	for table, ddl := range tableDDL {
		if HasTable(db, table) {
			continue
		}
		if _, err := db.Exec(ddl); err != nil {
			return err
		}
	}
	return nil
}

var tableDDL = map[string]string{
	"routes": `
CREATE TABLE IF NOT EXISTS routes (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	route_number VARCHAR(50) NOT NULL,
	name VARCHAR(255) NOT NULL,
	bus_type VARCHAR(50) NOT NULL DEFAULT 'standard',
	status VARCHAR(20) NOT NULL DEFAULT 'DRAFT',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_route_number (route_number)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`,
	"route_halts": `
CREATE TABLE IF NOT EXISTS route_halts (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	route_id BIGINT NOT NULL,
	direction CHAR(1) NOT NULL,
	idx INT NOT NULL,
	name VARCHAR(255) NOT NULL,
	latitude DOUBLE NOT NULL,
	longitude DOUBLE NOT NULL,
	fare BIGINT NOT NULL DEFAULT 0,
	UNIQUE KEY uniq_route_dir_idx (route_id, direction, idx),
	KEY idx_route (route_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`,
	"buses": `
CREATE TABLE IF NOT EXISTS buses (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	code VARCHAR(100) NOT NULL,
	registration VARCHAR(100) NOT NULL DEFAULT '',
	route_id BIGINT NOT NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'IN_SERVICE',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_bus_code (code),
	KEY idx_bus_route (route_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`,
	"trips": `
CREATE TABLE IF NOT EXISTS trips (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	bus_id BIGINT NOT NULL,
	route_id BIGINT NOT NULL,
	direction CHAR(1) NOT NULL,
	is_active TINYINT(1) NOT NULL DEFAULT 1,
	started_by BIGINT NOT NULL,
	started_at TIMESTAMP NOT NULL,
	ended_at TIMESTAMP NULL DEFAULT NULL,
	KEY idx_trip_bus_active (bus_id, is_active),
	KEY idx_trip_route (route_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`,
	"tickets": `
CREATE TABLE IF NOT EXISTS tickets (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	commuter_id BIGINT NOT NULL,
	trip_id BIGINT NOT NULL,
	boarding_idx INT NOT NULL,
	boarding_name VARCHAR(255) NOT NULL,
	boarding_lat DOUBLE NOT NULL,
	boarding_lng DOUBLE NOT NULL,
	boarding_fare BIGINT NOT NULL DEFAULT 0,
	dest_idx INT NULL,
	dest_name VARCHAR(255) NULL,
	dest_lat DOUBLE NULL,
	dest_lng DOUBLE NULL,
	dest_fare BIGINT NULL,
	adult_count INT NOT NULL DEFAULT 1,
	child_count INT NOT NULL DEFAULT 0,
	base_fare BIGINT NOT NULL DEFAULT 0,
	total_fare BIGINT NOT NULL DEFAULT 0,
	status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
	scan_code VARCHAR(64) NOT NULL,
	expires_at TIMESTAMP NOT NULL,
	issued_at TIMESTAMP NULL DEFAULT NULL,
	cancelled_at TIMESTAMP NULL DEFAULT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_scan_code (scan_code),
	KEY idx_ticket_commuter_status (commuter_id, status),
	KEY idx_ticket_trip (trip_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`,
	"wallets": `
CREATE TABLE IF NOT EXISTS wallets (
	commuter_id BIGINT PRIMARY KEY,
	balance BIGINT NOT NULL DEFAULT 0
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`,
}
