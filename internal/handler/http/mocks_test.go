package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/umasankari220/BookReview/internal/auth"
	"github.com/umasankari220/BookReview/internal/domain"
	"github.com/umasankari220/BookReview/internal/event"
	"github.com/umasankari220/BookReview/internal/repository"
	"github.com/umasankari220/BookReview/internal/service"
	"github.com/umasankari220/BookReview/pkg/health"
	"github.com/umasankari220/BookReview/pkg/httputil"
	pkgkafka "github.com/umasankari220/BookReview/pkg/kafka"
	"github.com/umasankari220/BookReview/pkg/middleware"
)

const (
	testUserID  = "11111111-1111-1111-1111-111111111111"
	testAdminID = "22222222-2222-2222-2222-222222222222"
	testBookID  = "33333333-3333-3333-3333-333333333333"
	testReview  = "44444444-4444-4444-4444-444444444444"
)

// --- Mock repositories ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type mockBookRepository struct {
	mock.Mock
}

func (m *mockBookRepository) Create(ctx context.Context, book *domain.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *mockBookRepository) GetByID(ctx context.Context, id string) (*domain.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}

func (m *mockBookRepository) List(ctx context.Context, filter repository.BookFilter) ([]domain.Book, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Book), args.Int(1), args.Error(2)
}

func (m *mockBookRepository) Update(ctx context.Context, book *domain.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *mockBookRepository) UpdateRating(ctx context.Context, bookID string, average float64, total int) error {
	args := m.Called(ctx, bookID, average, total)
	return args.Error(0)
}

func (m *mockBookRepository) DeleteWithReviews(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepository) GetByBookAndUser(ctx context.Context, bookID, userID string) (*domain.Review, error) {
	args := m.Called(ctx, bookID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockReviewRepository) ListByBook(ctx context.Context, bookID string) ([]domain.Review, error) {
	args := m.Called(ctx, bookID)
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReviewRepository) ListByUser(ctx context.Context, userID string) ([]domain.Review, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReviewRepository) ListAll(ctx context.Context) ([]domain.Review, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReviewRepository) AggregateByBook(ctx context.Context, bookID string) (repository.RatingStats, error) {
	args := m.Called(ctx, bookID)
	return args.Get(0).(repository.RatingStats), args.Error(1)
}

// --- Test environment ---

// testEnv wires real services over mock repositories behind the production
// router, so requests exercise routing, middleware, and handlers together.
type testEnv struct {
	userRepo   *mockUserRepository
	bookRepo   *mockBookRepository
	reviewRepo *mockReviewRepository
	jwtManager *auth.JWTManager
	router     http.Handler
}

func setupTestEnv() *testEnv {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	userRepo := &mockUserRepository{}
	bookRepo := &mockBookRepository{}
	reviewRepo := &mockReviewRepository{}

	jwtManager := auth.NewJWTManager("test-secret-key-for-testing", 15*time.Minute)

	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	producer := event.NewProducer(pkgkafka.NewProducer(kafkaCfg, logger), logger)

	aggregator := service.NewRatingAggregator(bookRepo, reviewRepo, logger)
	authService := service.NewAuthService(userRepo, jwtManager, producer, logger)
	bookService := service.NewBookService(bookRepo, producer, logger)
	reviewService := service.NewReviewService(reviewRepo, bookRepo, aggregator, producer, logger)

	router := NewRouter(
		authService,
		bookService,
		reviewService,
		jwtManager,
		health.NewHandler(),
		logger,
		middleware.DefaultCORSConfig(),
	)

	return &testEnv{
		userRepo:   userRepo,
		bookRepo:   bookRepo,
		reviewRepo: reviewRepo,
		jwtManager: jwtManager,
		router:     router,
	}
}

func (e *testEnv) userToken(t *testing.T) string {
	t.Helper()
	token, err := e.jwtManager.GenerateAccessToken(testUserID, "user@example.com", false)
	require.NoError(t, err)
	return token
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	token, err := e.jwtManager.GenerateAccessToken(testAdminID, "admin@example.com", true)
	require.NoError(t, err)
	return token
}

// doRequest sends a JSON request through the router. A non-empty token is
// attached as a bearer credential.
func (e *testEnv) doRequest(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// doRawRequest sends a request with an arbitrary content type and body.
func (e *testEnv) doRawRequest(t *testing.T, method, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// apiResponse mirrors the JSON envelope with the data payload left raw so
// tests can decode it into the expected type.
type apiResponse struct {
	Data  json.RawMessage         `json:"data"`
	Error *httputil.ErrorResponse `json:"error"`
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func decodeData(t *testing.T, resp apiResponse, v any) {
	t.Helper()
	require.NotNil(t, resp.Data)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

func strPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}
