package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/SergeiKhy/visit-tracker/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresDB struct {
	Pool *pgxpool.Pool
}

func NewPostgresDB(cfg config.DBConfig) (*PostgresDB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Name,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DB config: %w", err)
	}

	// Настройка пула соединений
	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Проверка подключения
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDB{Pool: pool}, nil
}

// InitSchema создаёт таблицу посещений и индексы, если их ещё нет
func (db *PostgresDB) InitSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS page_visits (
			id UUID PRIMARY KEY,
			url TEXT NOT NULL,
			datetime_visited TIMESTAMPTZ NOT NULL,
			link_count INTEGER NOT NULL CHECK (link_count >= 0),
			word_count INTEGER NOT NULL CHECK (word_count >= 0),
			image_count INTEGER NOT NULL CHECK (image_count >= 0),
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_page_visits_url ON page_visits (url)`,
		`CREATE INDEX IF NOT EXISTS idx_page_visits_datetime ON page_visits (datetime_visited)`,
		`CREATE INDEX IF NOT EXISTS idx_page_visits_url_datetime ON page_visits (url, datetime_visited)`,
	}

	for _, stmt := range statements {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to init schema: %w", err)
		}
	}

	return nil
}

// Ping проверяет соединение с БД (используется health check'ом)
func (db *PostgresDB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

func (db *PostgresDB) Close() {
	db.Pool.Close()
}
