package bookingRepo

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"bookingbot/models"

	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteBookingRepo stores bookings in a local SQLite database.
type SQLiteBookingRepo struct {
	db *sql.DB
}

// NewSQLiteBookingRepo opens (or creates) the database at path and applies
// pending migrations.
func NewSQLiteBookingRepo(path string) (*SQLiteBookingRepo, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	for _, p := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	r := &SQLiteBookingRepo{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return r, nil
}

// Close closes the underlying database connection.
func (r *SQLiteBookingRepo) Close() error { return r.db.Close() }

func (r *SQLiteBookingRepo) migrate() error {
	if _, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	var current int
	_ = r.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current)

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		version, err := strconv.Atoi(strings.SplitN(e.Name(), "_", 2)[0])
		if err != nil || version <= current {
			continue
		}
		body, err := migrationsFS.ReadFile("migrations/" + e.Name())
		if err != nil {
			return fmt.Errorf("read migration %s: %w", e.Name(), err)
		}
		tx, err := r.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(body)); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %s: %w", e.Name(), err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
			version, time.Now().UTC().Format(time.RFC3339)); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %s: %w", e.Name(), err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// Save inserts a new booking and returns its ID.
func (r *SQLiteBookingRepo) Save(ctx context.Context, b models.Booking) (string, error) {
	if b.ID == "" {
		b.ID = NewBookingID()
	}
	if b.Status == "" {
		b.Status = models.PaymentPending
	}
	addons, err := json.Marshal(nonNil(b.Addons))
	if err != nil {
		return "", err
	}
	custom, err := json.Marshal(nonNil(b.CustomFeatures))
	if err != nil {
		return "", err
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO bookings (booking_id, session, country_code, phone, name, type, category,
			base, addons, custom, date, time, status, amount, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.SessionID, b.CountryCode, b.Phone, b.Name, b.Type, b.Category,
		b.BaseAmount, string(addons), string(custom), b.Date, b.Time, b.Status, b.FinalAmount, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("insert booking: %w", err)
	}
	return b.ID, nil
}

// GetByID returns a booking by its ID.
func (r *SQLiteBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var (
		b                   models.Booking
		addons, custom      string
		createdAt, updateAt string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT booking_id, session, country_code, phone, name, type, category, base,
			addons, custom, date, time, status, amount, created_at, updated_at
		FROM bookings WHERE booking_id = ?`, id,
	).Scan(&b.ID, &b.SessionID, &b.CountryCode, &b.Phone, &b.Name, &b.Type, &b.Category, &b.BaseAmount,
		&addons, &custom, &b.Date, &b.Time, &b.Status, &b.FinalAmount, &createdAt, &updateAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query booking: %w", err)
	}
	if err := json.Unmarshal([]byte(addons), &b.Addons); err != nil {
		return nil, fmt.Errorf("decode addons: %w", err)
	}
	if err := json.Unmarshal([]byte(custom), &b.CustomFeatures); err != nil {
		return nil, fmt.Errorf("decode custom features: %w", err)
	}
	b.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	b.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updateAt)
	return &b, nil
}

// Cancel marks a booking as cancelled.
func (r *SQLiteBookingRepo) Cancel(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE bookings SET status = ?, updated_at = ? WHERE booking_id = ?",
		models.StatusCancelled, time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
