package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Visit запись об одном посещении страницы с метриками
type Visit struct {
	ID              uuid.UUID `json:"id"`
	URL             string    `json:"url"`
	DatetimeVisited time.Time `json:"datetime_visited"`
	LinkCount       int       `json:"link_count"`
	WordCount       int       `json:"word_count"`
	ImageCount      int       `json:"image_count"`
	CreatedAt       time.Time `json:"created_at"`
}

type CreateVisitInput struct {
	URL             string
	DatetimeVisited *time.Time
	LinkCount       int
	WordCount       int
	ImageCount      int
}

// VisitList страница результатов с общим количеством записей
type VisitList struct {
	Visits []Visit `json:"visits"`
	Total  int64   `json:"total"`
}

// VisitTime временная метка, принимающая RFC3339 и ISO-8601 без зоны
// (расширение шлёт метки без смещения, трактуем их как UTC)
type VisitTime struct {
	time.Time
}

func (t *VisitTime) UnmarshalJSON(data []byte) error {
	// Только настоящий JSON null означает "не передано"; пустая строка
	// и строка "null" - это невалидные значения
	if string(data) == "null" {
		return nil
	}

	s := strings.Trim(string(data), `"`)
	if s == "" {
		return fmt.Errorf("invalid timestamp: empty value")
	}

	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		parsed, err = time.ParseInLocation("2006-01-02T15:04:05", s, time.UTC)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
	}

	t.Time = parsed
	return nil
}
