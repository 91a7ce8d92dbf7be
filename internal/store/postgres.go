// Package store provides the persistence adapters: PostgreSQL for durable
// data, an in-memory mirror for development and tests, and the snapshot
// cache fed by the background refresher.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"weatherdash/internal/auth"
	"weatherdash/internal/favorites"
)

const uniqueViolation = "23505"

// PostgresStore implements the user and favorites persistence boundaries on
// PostgreSQL.
type PostgresStore struct {
	sql *sql.DB
}

var (
	_ favorites.Store = (*PostgresStore)(nil)
	_ auth.UserStore  = (*PostgresStore)(nil)
)

// OpenPostgres connects, pings, and runs migrations.
func OpenPostgres(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &PostgresStore{sql: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.sql.Close()
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);`,
		"CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (lower(email));",
		`CREATE TABLE IF NOT EXISTS favorites (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			city TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);`,
		// The store-level guarantee behind at-most-one favorite per
		// (user, city) under case-insensitive comparison.
		"CREATE UNIQUE INDEX IF NOT EXISTS favorites_user_city_key ON favorites (user_id, lower(city));",
	}

	for _, stmt := range stmts {
		if _, err := s.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// --- favorites.Store ---

// FindByUserAndCity looks up a favorite case-insensitively.
func (s *PostgresStore) FindByUserAndCity(ctx context.Context, userID uuid.UUID, city string) (*favorites.Favorite, error) {
	var f favorites.Favorite
	err := s.sql.QueryRowContext(ctx,
		"SELECT id, user_id, city, created_at FROM favorites WHERE user_id = $1 AND lower(city) = lower($2)",
		userID, city,
	).Scan(&f.ID, &f.UserID, &f.City, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Create inserts a favorite, mapping the unique-index violation to
// favorites.ErrAlreadyFavorite.
func (s *PostgresStore) Create(ctx context.Context, userID uuid.UUID, city string) (*favorites.Favorite, error) {
	f := favorites.Favorite{
		ID:        uuid.New(),
		UserID:    userID,
		City:      city,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.sql.ExecContext(ctx,
		"INSERT INTO favorites (id, user_id, city, created_at) VALUES ($1, $2, $3, $4)",
		f.ID, f.UserID, f.City, f.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, favorites.ErrAlreadyFavorite
		}
		return nil, err
	}
	return &f, nil
}

// ListByUser returns the user's favorites ordered by creation time.
func (s *PostgresStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]favorites.Favorite, error) {
	rows, err := s.sql.QueryContext(ctx,
		"SELECT id, user_id, city, created_at FROM favorites WHERE user_id = $1 ORDER BY created_at, id",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []favorites.Favorite
	for rows.Next() {
		var f favorites.Favorite
		if err := rows.Scan(&f.ID, &f.UserID, &f.City, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// ListCities returns the distinct set of favorited city names across all
// users, for the background refresher.
func (s *PostgresStore) ListCities(ctx context.Context) ([]string, error) {
	rows, err := s.sql.QueryContext(ctx,
		"SELECT min(city) FROM favorites GROUP BY lower(city) ORDER BY 1",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cities []string
	for rows.Next() {
		var city string
		if err := rows.Scan(&city); err != nil {
			return nil, err
		}
		cities = append(cities, city)
	}
	return cities, rows.Err()
}

// --- auth.UserStore ---

// CreateUser inserts an account, mapping the email unique-index violation to
// auth.ErrEmailTaken.
func (s *PostgresStore) CreateUser(ctx context.Context, name, email, passwordHash string) (*auth.User, error) {
	u := auth.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := s.sql.ExecContext(ctx,
		"INSERT INTO users (id, name, email, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)",
		u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, auth.ErrEmailTaken
		}
		return nil, err
	}
	return &u, nil
}

// FindUserByEmail retrieves an account by email, (nil, nil) when absent.
func (s *PostgresStore) FindUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	var u auth.User
	err := s.sql.QueryRowContext(ctx,
		"SELECT id, name, email, password_hash, created_at FROM users WHERE lower(email) = lower($1)",
		email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
