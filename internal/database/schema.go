package database

import (
	"context"
	"database/sql"
)

// schema lists the DDL statements applied at startup.  Statements use
// CREATE TABLE IF NOT EXISTS so repeated boots are harmless.
//
// The bookings table carries the seat-uniqueness invariant: active_seat is a
// generated column that mirrors seat_number while the booking is BOOKED and
// becomes NULL once it is cancelled.  MySQL unique indexes ignore NULLs, so
// the unique key (show_id, active_seat) admits at most one BOOKED row per
// seat while keeping the full history of cancelled rows.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		email         VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role          VARCHAR(16)  NOT NULL DEFAULT 'CUSTOMER',
		is_active     TINYINT(1)   NOT NULL DEFAULT 1,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_refresh_hash (token_hash),
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users (id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS movies (
		id               BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		title            VARCHAR(200) NOT NULL,
		duration_minutes INT UNSIGNED NOT NULL,
		created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_movies_title (title)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS shows (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		movie_id    BIGINT UNSIGNED NOT NULL,
		screen_name VARCHAR(100) NOT NULL,
		date_time   DATETIME NOT NULL,
		total_seats INT UNSIGNED NOT NULL,
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_shows_screen_slot (screen_name, date_time),
		CONSTRAINT fk_shows_movie FOREIGN KEY (movie_id) REFERENCES movies (id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id     BIGINT UNSIGNED NOT NULL,
		show_id     BIGINT UNSIGNED NOT NULL,
		seat_number INT UNSIGNED NOT NULL,
		status      ENUM('BOOKED','CANCELLED') NOT NULL DEFAULT 'BOOKED',
		active_seat INT UNSIGNED GENERATED ALWAYS AS (IF(status = 'BOOKED', seat_number, NULL)) STORED,
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_bookings_active_seat (show_id, active_seat),
		KEY idx_bookings_show_seat_status (show_id, seat_number, status),
		KEY idx_bookings_user (user_id, created_at),
		CONSTRAINT fk_bookings_user FOREIGN KEY (user_id) REFERENCES users (id),
		CONSTRAINT fk_bookings_show FOREIGN KEY (show_id) REFERENCES shows (id)
	) ENGINE=InnoDB`,
}

// EnsureSchema creates all tables required by the service.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
