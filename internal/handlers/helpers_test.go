package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/todolite/todolite/internal/apperr"
	"github.com/todolite/todolite/internal/config"
	"github.com/todolite/todolite/internal/email"
	"github.com/todolite/todolite/internal/middleware"
	"github.com/todolite/todolite/internal/models"
	"github.com/todolite/todolite/internal/notifier"
	"github.com/todolite/todolite/internal/service"
)

// fakeCache is an in-memory expiring store satisfying service.OTPCache. Its
// clock only moves via advance, so TTL behavior is deterministic.
type fakeCache struct {
	mu      sync.Mutex
	now     time.Time
	entries map[string]fakeEntry
}

type fakeEntry struct {
	value     string
	expiresAt time.Time
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		now:     time.Unix(1700000000, 0),
		entries: make(map[string]fakeEntry),
	}
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = fakeEntry{
		value:     fmt.Sprint(value),
		expiresAt: c.now.Add(expiration),
	}
	return redis.NewStatusResult("OK", nil)
}

func (c *fakeCache) Get(ctx context.Context, key string) *redis.StringCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || !c.now.Before(entry.expiresAt) {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(entry.value, nil)
}

func (c *fakeCache) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*models.User)}
}

func (s *fakeUserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[username]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Username]; ok {
		return apperr.ErrConflict
	}
	s.nextID++
	user.ID = s.nextID
	copied := *user
	s.users[user.Username] = &copied
	return nil
}

func (s *fakeUserStore) UpdateEmail(ctx context.Context, username, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[username]
	if !ok {
		return apperr.ErrNotFound
	}
	user.Email = address
	return nil
}

type fakeToDoStore struct {
	mu     sync.Mutex
	nextID int64
	todos  map[int64]*models.ToDo
}

func newFakeToDoStore() *fakeToDoStore {
	return &fakeToDoStore{todos: make(map[int64]*models.ToDo)}
}

func (s *fakeToDoStore) Create(ctx context.Context, todo *models.ToDo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	todo.ID = s.nextID
	copied := *todo
	s.todos[todo.ID] = &copied
	return nil
}

func (s *fakeToDoStore) GetByID(ctx context.Context, id int64) (*models.ToDo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	todo, ok := s.todos[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	copied := *todo
	return &copied, nil
}

func (s *fakeToDoStore) ListByUserID(ctx context.Context, userID int64) ([]models.ToDo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []models.ToDo
	for id := int64(1); id <= s.nextID; id++ {
		if todo, ok := s.todos[id]; ok && todo.UserID == userID {
			result = append(result, *todo)
		}
	}
	return result, nil
}

func (s *fakeToDoStore) Update(ctx context.Context, todo *models.ToDo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.todos[todo.ID]
	if !ok {
		return apperr.ErrNotFound
	}
	stored.IsDone = todo.IsDone
	return nil
}

func (s *fakeToDoStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.todos, id)
	return nil
}

type sentEmail struct {
	To      string
	Subject string
	Body    string
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentEmail
}

func (s *recordingSender) Send(ctx context.Context, to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentEmail{To: to, Subject: subject, Body: body})
	return nil
}

func (s *recordingSender) all() []sentEmail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentEmail(nil), s.sent...)
}

var _ email.Sender = (*recordingSender)(nil)

type testEnv struct {
	router     http.Handler
	users      *fakeUserStore
	todos      *fakeToDoStore
	cache      *fakeCache
	sender     *recordingSender
	runner     *notifier.Runner
	jwtService *service.JWTService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	jwtService, err := service.NewJWTService(&config.JWTConfig{
		SecretKey:    strings.Repeat("x", 32),
		AccessExpiry: time.Hour,
	}, logger)
	require.NoError(t, err)

	cache := newFakeCache()
	otpService := service.NewOTPService(cache, &config.OTPConfig{
		Length: 4,
		Expiry: 3 * time.Minute,
	}, logger)

	runner := notifier.NewRunner(logger, 8)
	t.Cleanup(runner.Close)

	sender := &recordingSender{}
	users := newFakeUserStore()
	todos := newFakeToDoStore()

	userHandlers := NewUserHandlers(users, otpService, jwtService, runner, sender, logger)
	todoHandlers := NewToDoHandlers(todos, users, jwtService, logger)

	router := NewRouter(userHandlers, todoHandlers, middleware.NewAuthMiddleware(logger), logger)

	return &testEnv{
		router:     router,
		users:      users,
		todos:      todos,
		cache:      cache,
		sender:     sender,
		runner:     runner,
		jwtService: jwtService,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	e.router.ServeHTTP(recorder, req)
	return recorder
}

// signUpAndLogIn registers the user and returns a valid access token.
func (e *testEnv) signUpAndLogIn(t *testing.T, username, password string) string {
	t.Helper()

	resp := e.do(t, http.MethodPost, "/users/sign-up", "", SignUpRequest{Username: username, Password: password})
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = e.do(t, http.MethodPost, "/users/log-in", "", LogInRequest{Username: username, Password: password})
	require.Equal(t, http.StatusOK, resp.Code)

	var body JWTResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.NotEmpty(t, body.AccessToken)
	return body.AccessToken
}

func decodeJSON[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	return out
}
