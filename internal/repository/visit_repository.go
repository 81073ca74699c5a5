package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/SergeiKhy/visit-tracker/internal/models"
	"github.com/jackc/pgx/v5"
)

var ErrVisitNotFound = errors.New("visit not found")

type VisitRepository interface {
	Create(ctx context.Context, visit *models.Visit) error
	ListByURL(ctx context.Context, url string, limit, offset int) ([]models.Visit, error)
	LatestByURL(ctx context.Context, url string) (*models.Visit, error)
	CountByURL(ctx context.Context, url string) (int64, error)
	ListAll(ctx context.Context, limit, offset int) ([]models.Visit, error)
	CountAll(ctx context.Context) (int64, error)
}

type visitRepository struct {
	db *PostgresDB
}

func NewVisitRepository(db *PostgresDB) VisitRepository {
	return &visitRepository{db: db}
}

// Порядок выдачи: сначала самые свежие посещения; created_at и id
// добиваются стабильности при одинаковых datetime_visited
const visitOrder = `ORDER BY datetime_visited DESC, created_at DESC, id DESC`

func (r *visitRepository) Create(ctx context.Context, visit *models.Visit) error {
	query := `
		INSERT INTO page_visits (id, url, datetime_visited, link_count, word_count, image_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		visit.ID,
		visit.URL,
		visit.DatetimeVisited,
		visit.LinkCount,
		visit.WordCount,
		visit.ImageCount,
		visit.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create visit: %w", err)
	}

	return nil
}

func (r *visitRepository) ListByURL(ctx context.Context, url string, limit, offset int) ([]models.Visit, error) {
	query := `
		SELECT id, url, datetime_visited, link_count, word_count, image_count, created_at
		FROM page_visits
		WHERE url = $1
		` + visitOrder + `
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, url, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	defer rows.Close()

	return scanVisits(rows)
}

func (r *visitRepository) LatestByURL(ctx context.Context, url string) (*models.Visit, error) {
	query := `
		SELECT id, url, datetime_visited, link_count, word_count, image_count, created_at
		FROM page_visits
		WHERE url = $1
		` + visitOrder + `
		LIMIT 1
	`

	visit := &models.Visit{}
	err := r.db.Pool.QueryRow(ctx, query, url).Scan(
		&visit.ID,
		&visit.URL,
		&visit.DatetimeVisited,
		&visit.LinkCount,
		&visit.WordCount,
		&visit.ImageCount,
		&visit.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVisitNotFound
		}
		return nil, fmt.Errorf("failed to get latest visit: %w", err)
	}

	return visit, nil
}

func (r *visitRepository) CountByURL(ctx context.Context, url string) (int64, error) {
	query := `SELECT COUNT(*) FROM page_visits WHERE url = $1`

	var total int64
	if err := r.db.Pool.QueryRow(ctx, query, url).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count visits: %w", err)
	}

	return total, nil
}

func (r *visitRepository) ListAll(ctx context.Context, limit, offset int) ([]models.Visit, error) {
	query := `
		SELECT id, url, datetime_visited, link_count, word_count, image_count, created_at
		FROM page_visits
		` + visitOrder + `
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	defer rows.Close()

	return scanVisits(rows)
}

func (r *visitRepository) CountAll(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM page_visits`

	var total int64
	if err := r.db.Pool.QueryRow(ctx, query).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count visits: %w", err)
	}

	return total, nil
}

func scanVisits(rows pgx.Rows) ([]models.Visit, error) {
	visits := []models.Visit{}
	for rows.Next() {
		var visit models.Visit
		if err := rows.Scan(
			&visit.ID,
			&visit.URL,
			&visit.DatetimeVisited,
			&visit.LinkCount,
			&visit.WordCount,
			&visit.ImageCount,
			&visit.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		visits = append(visits, visit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating visits: %w", err)
	}

	return visits, nil
}
