package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/SergeiKhy/visit-tracker/internal/handler"
	"github.com/SergeiKhy/visit-tracker/internal/models"
	"github.com/SergeiKhy/visit-tracker/internal/service"
	"github.com/SergeiKhy/visit-tracker/internal/service/mocks"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// envelope структура конверта ответа для разбора в тестах
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []string        `json:"errors"`
}

// setupRouter собирает роутер поверх мокового репозитория
func setupRouter() (*gin.Engine, *mocks.MockVisitRepository) {
	visitRepo := mocks.NewMockVisitRepository()
	visitService := service.NewVisitService(visitRepo)
	health := handler.NewHealthHandler(nil, zap.NewNop(), "1.0.0", time.Now())
	router := handler.NewRouter(visitService, health, zap.NewNop())
	return router, visitRepo
}

func doJSON(router *gin.Engine, method, target string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

// TestCreateVisit_Success проверяет 201 и содержимое созданной записи
func TestCreateVisit_Success(t *testing.T) {
	router, _ := setupRouter()

	w, env := doJSON(router, http.MethodPost, "/api/visits", gin.H{
		"url":         "https://example.com",
		"link_count":  45,
		"word_count":  1200,
		"image_count": 8,
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Visit created successfully", env.Message)

	var visit models.Visit
	require.NoError(t, json.Unmarshal(env.Data, &visit))
	assert.Equal(t, "https://example.com", visit.URL)
	assert.Equal(t, 45, visit.LinkCount)
	assert.Equal(t, 1200, visit.WordCount)
	assert.Equal(t, 8, visit.ImageCount)
	assert.NotEmpty(t, visit.ID)
	assert.False(t, visit.CreatedAt.IsZero())
	assert.False(t, visit.DatetimeVisited.IsZero())
}

// TestCreateVisit_ExplicitTimestamp проверяет сохранение переданного времени визита
func TestCreateVisit_ExplicitTimestamp(t *testing.T) {
	router, _ := setupRouter()

	w, env := doJSON(router, http.MethodPost, "/api/visits", gin.H{
		"url":              "https://example.com",
		"datetime_visited": "2024-01-15T10:30:00",
		"link_count":       10,
		"word_count":       500,
		"image_count":      5,
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var visit models.Visit
	require.NoError(t, json.Unmarshal(env.Data, &visit))
	assert.True(t, visit.DatetimeVisited.Equal(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)))
}

// TestCreateVisit_ZeroCounts проверяет, что нулевые метрики валидны
func TestCreateVisit_ZeroCounts(t *testing.T) {
	router, _ := setupRouter()

	w, env := doJSON(router, http.MethodPost, "/api/visits", gin.H{
		"url":         "https://example.com",
		"link_count":  0,
		"word_count":  0,
		"image_count": 0,
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
}

// TestCreateVisit_NegativeCount проверяет отклонение отрицательных метрик
func TestCreateVisit_NegativeCount(t *testing.T) {
	router, _ := setupRouter()

	w, env := doJSON(router, http.MethodPost, "/api/visits", gin.H{
		"url":         "https://example.com",
		"link_count":  -1,
		"word_count":  500,
		"image_count": 5,
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.False(t, env.Success)
	require.NotEmpty(t, env.Errors)
	assert.Contains(t, env.Errors[0], "link_count")
}

// TestCreateVisit_MissingFields проверяет отклонение запроса без обязательных полей
func TestCreateVisit_MissingFields(t *testing.T) {
	router, _ := setupRouter()

	w, env := doJSON(router, http.MethodPost, "/api/visits", gin.H{
		"url": "https://example.com",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.False(t, env.Success)
	assert.Len(t, env.Errors, 3)
}

// TestCreateVisit_InvalidURL проверяет отклонение строки, не являющейся URL
func TestCreateVisit_InvalidURL(t *testing.T) {
	router, _ := setupRouter()

	w, env := doJSON(router, http.MethodPost, "/api/visits", gin.H{
		"url":         "not-a-valid-url",
		"link_count":  10,
		"word_count":  500,
		"image_count": 5,
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.False(t, env.Success)
}

// TestCreateVisit_MalformedTimestamp проверяет отклонение нечитаемой временной метки
func TestCreateVisit_MalformedTimestamp(t *testing.T) {
	router, _ := setupRouter()

	w, env := doJSON(router, http.MethodPost, "/api/visits", gin.H{
		"url":              "https://example.com",
		"datetime_visited": "yesterday",
		"link_count":       10,
		"word_count":       500,
		"image_count":      5,
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.False(t, env.Success)
}

// TestCreateVisit_EmptyTimestamp проверяет, что пустая строка и строка "null"
// отклоняются, а не превращаются в нулевое время
func TestCreateVisit_EmptyTimestamp(t *testing.T) {
	router, _ := setupRouter()

	for _, bad := range []string{"", "null"} {
		w, env := doJSON(router, http.MethodPost, "/api/visits", gin.H{
			"url":              "https://example.com",
			"datetime_visited": bad,
			"link_count":       10,
			"word_count":       500,
			"image_count":      5,
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.False(t, env.Success)
		assert.NotContains(t, w.Body.String(), "0001-01-01")
	}
}

// TestCreateVisit_NullTimestamp проверяет, что JSON null трактуется как
// отсутствие значения: время визита подставляется сервером
func TestCreateVisit_NullTimestamp(t *testing.T) {
	router, _ := setupRouter()

	w, env := doJSON(router, http.MethodPost, "/api/visits", gin.H{
		"url":              "https://example.com",
		"datetime_visited": nil,
		"link_count":       10,
		"word_count":       500,
		"image_count":      5,
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var visit models.Visit
	require.NoError(t, json.Unmarshal(env.Data, &visit))
	assert.False(t, visit.DatetimeVisited.IsZero())
}

// TestCreateVisit_StoreFailure проверяет 500 с общим сообщением без деталей БД
func TestCreateVisit_StoreFailure(t *testing.T) {
	router, visitRepo := setupRouter()
	visitRepo.FailWith = errors.New("pq: connection refused on 10.0.0.5")

	w, env := doJSON(router, http.MethodPost, "/api/visits", gin.H{
		"url":         "https://example.com",
		"link_count":  10,
		"word_count":  500,
		"image_count": 5,
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Failed to create visit", env.Message)
	// Внутренняя ошибка не должна утекать клиенту
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
}

// TestGetVisitsByURL_EncodedPath проверяет раскодирование URL из path-параметра
func TestGetVisitsByURL_EncodedPath(t *testing.T) {
	router, _ := setupRouter()

	doJSON(router, http.MethodPost, "/api/visits", gin.H{
		"url":         "https://www.uhcprovider.com/en/health-plans.html",
		"link_count":  42,
		"word_count":  1150,
		"image_count": 7,
	})

	encoded := "https%3A%2F%2Fwww.uhcprovider.com%2Fen%2Fhealth-plans.html"
	w, env := doJSON(router, http.MethodGet, "/api/visits/url/"+encoded, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	var list models.VisitList
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Visits, 1)
	assert.Equal(t, int64(1), list.Total)
	assert.Equal(t, "https://www.uhcprovider.com/en/health-plans.html", list.Visits[0].URL)
}

// TestGetVisitsByURL_Empty проверяет 200 с пустым списком, а не ошибку
func TestGetVisitsByURL_Empty(t *testing.T) {
	router, _ := setupRouter()

	w, env := doJSON(router, http.MethodGet, "/api/visits/url/https%3A%2F%2Fnothing.here", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	var list models.VisitList
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Empty(t, list.Visits)
	assert.Equal(t, int64(0), list.Total)
}

// TestGetVisitsByURL_PaginationBounds проверяет границы limit/offset
func TestGetVisitsByURL_PaginationBounds(t *testing.T) {
	router, _ := setupRouter()
	base := "/api/visits/url/https%3A%2F%2Fexample.com"

	cases := []struct {
		name   string
		query  string
		status int
	}{
		{"limit zero", "?limit=0", http.StatusUnprocessableEntity},
		{"limit above max", "?limit=101", http.StatusUnprocessableEntity},
		{"limit not a number", "?limit=ten", http.StatusUnprocessableEntity},
		{"negative offset", "?offset=-1", http.StatusUnprocessableEntity},
		{"limit one", "?limit=1", http.StatusOK},
		{"limit at max", "?limit=100", http.StatusOK},
		{"defaults", "", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, _ := doJSON(router, http.MethodGet, base+tc.query, nil)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

// TestGetAllVisits_PaginationBounds проверяет расширенный максимум limit для общей выдачи
func TestGetAllVisits_PaginationBounds(t *testing.T) {
	router, _ := setupRouter()

	w, _ := doJSON(router, http.MethodGet, "/api/visits?limit=500", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := doJSON(router, http.MethodGet, "/api/visits?limit=501", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.False(t, env.Success)
}

// TestGetAllVisits_AcrossURLs проверяет выдачу по всем URL
func TestGetAllVisits_AcrossURLs(t *testing.T) {
	router, _ := setupRouter()

	for i := 0; i < 3; i++ {
		doJSON(router, http.MethodPost, "/api/visits", gin.H{
			"url":         fmt.Sprintf("https://site-%d.com", i),
			"link_count":  i,
			"word_count":  i * 10,
			"image_count": i,
		})
	}

	w, env := doJSON(router, http.MethodGet, "/api/visits", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var list models.VisitList
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list.Visits, 3)
	assert.Equal(t, int64(3), list.Total)
}

// TestGetLatestVisit_NotFound проверяет 404 при отсутствии посещений
func TestGetLatestVisit_NotFound(t *testing.T) {
	router, _ := setupRouter()

	w, env := doJSON(router, http.MethodGet, "/api/visits/url/https%3A%2F%2Fnothing.here/latest", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Message, "No visits found")
}

// TestGetLatestVisit_Success проверяет выбор самой свежей записи
func TestGetLatestVisit_Success(t *testing.T) {
	router, _ := setupRouter()

	doJSON(router, http.MethodPost, "/api/visits", gin.H{
		"url":              "https://example.com",
		"datetime_visited": "2024-01-15T10:30:00",
		"link_count":       1,
		"word_count":       1,
		"image_count":      1,
	})
	doJSON(router, http.MethodPost, "/api/visits", gin.H{
		"url":              "https://example.com",
		"datetime_visited": "2024-02-15T10:30:00",
		"link_count":       2,
		"word_count":       2,
		"image_count":      2,
	})

	w, env := doJSON(router, http.MethodGet, "/api/visits/url/https%3A%2F%2Fexample.com/latest", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var visit models.Visit
	require.NoError(t, json.Unmarshal(env.Data, &visit))
	assert.Equal(t, 2, visit.LinkCount)
}

// TestRoot проверяет информационный эндпоинт
func TestRoot(t *testing.T) {
	router, _ := setupRouter()

	w, env := doJSON(router, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	var info map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.Equal(t, "Chrome History Sidepanel API", info["message"])
	assert.Equal(t, "1.0.0", info["version"])
	assert.Equal(t, "/health", info["health"])
	// docs указывает на живой маршрут этого сервиса
	assert.Equal(t, "/", info["docs"])
}
