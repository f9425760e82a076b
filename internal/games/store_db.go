package games

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
	pgUniqueCode = "23505"
)

// PostgresStore expects:
//
//	CREATE TABLE games (
//		id       uuid PRIMARY KEY,
//		name     text NOT NULL,
//		producer text NOT NULL,
//		price    double precision NOT NULL,
//		UNIQUE (name, producer)
//	);
//
// The unique constraint is what makes concurrent duplicate inserts safe.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres opens a pool through the pgx driver and verifies it answers.
// The caller owns the returned handle and must Close it.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := withTimeout(ctx, pingTimeout, db.PingContext); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresStore) List(ctx context.Context, offset int64, limit int) ([]Game, error) {
	var out []Game

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, name, producer, price
			FROM games
			ORDER BY name ASC, producer ASC, id ASC
			LIMIT $1 OFFSET $2
		`, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]Game, 0, limit)
		for rows.Next() {
			var g Game
			if err := rows.Scan(&g.ID, &g.Name, &g.Producer, &g.Price); err != nil {
				return err
			}
			out = append(out, g)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (Game, bool, error) {
	return s.getOne(ctx, `
		SELECT id, name, producer, price
		FROM games
		WHERE id = $1
	`, id)
}

func (s *PostgresStore) FindByNameProducer(ctx context.Context, name, producer string) (Game, bool, error) {
	return s.getOne(ctx, `
		SELECT id, name, producer, price
		FROM games
		WHERE name = $1 AND producer = $2
	`, name, producer)
}

func (s *PostgresStore) getOne(ctx context.Context, query string, args ...any) (Game, bool, error) {
	var g Game

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, query, args...).
			Scan(&g.ID, &g.Name, &g.Producer, &g.Price)
	})

	if errors.Is(err, sql.ErrNoRows) {
		return Game{}, false, nil
	}
	if err != nil {
		return Game{}, false, fmt.Errorf("get game: %w", err)
	}
	return g, true, nil
}

func (s *PostgresStore) Insert(ctx context.Context, g Game) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO games (id, name, producer, price)
			VALUES ($1, $2, $3, $4)
		`, g.ID, g.Name, g.Producer, g.Price)
		return mapWriteErr("insert game", err)
	})
}

func (s *PostgresStore) Update(ctx context.Context, g Game) error {
	return s.execOne(ctx, "update game", `
		UPDATE games
		SET name = $2, producer = $3, price = $4
		WHERE id = $1
	`, g.ID, g.Name, g.Producer, g.Price)
}

func (s *PostgresStore) UpdatePrice(ctx context.Context, id uuid.UUID, price float64) error {
	return s.execOne(ctx, "update game price", `
		UPDATE games
		SET price = $2
		WHERE id = $1
	`, id, price)
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.execOne(ctx, "delete game", `
		DELETE FROM games
		WHERE id = $1
	`, id)
}

// execOne runs a statement that must touch exactly one row.
func (s *PostgresStore) execOne(ctx context.Context, op, query string, args ...any) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return mapWriteErr(op, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func mapWriteErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return fmt.Errorf("%s: %w", op, err)
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueCode
}
