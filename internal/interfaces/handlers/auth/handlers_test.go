package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	authsvc "sunshare-backend/internal/application/auth"
	"sunshare-backend/internal/domain"
	"sunshare-backend/internal/middleware"
	"sunshare-backend/internal/pkg/constants"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type failingFinder struct{}

func (failingFinder) FindByEmailAndPassword(context.Context, string, string) (*domain.User, error) {
	return nil, errors.New("connection refused")
}

func setupAuth(t *testing.T) (*fiber.App, *Handlers, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))
	hash, err := bcrypt.GenerateFromPassword([]byte("Sun$hare1"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&domain.User{
		UserName: "priya", Email: "priya@example.com", PasswordHash: string(hash), Fullname: "Priya Shah", Role: constants.Customer,
	}).Error)

	h := &Handlers{UserFinder: &authsvc.GormUserFinder{DB: db}, Rdb: rdb, Config: middleware.SessionConfig{}}
	app := fiber.New()
	app.Use(middleware.Session(rdb))
	app.Post("/login", h.Login)
	app.Get("/me", h.Me)
	app.Delete("/logout", h.Logout)
	return app, h, rdb
}

func login(t *testing.T, app *fiber.App, email, password string) *httptestResult {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req := httptest.NewRequest("POST", "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	return &httptestResult{Code: resp.StatusCode, Body: b, Cookies: resp.Header.Values("Set-Cookie")}
}

type httptestResult struct {
	Code    int
	Body    []byte
	Cookies []string
}

// sessionCookie turns a Set-Cookie header into a Cookie request header value.
func sessionCookie(setCookie string) string {
	return strings.SplitN(setCookie, ";", 2)[0]
}

func TestLogin_Validation(t *testing.T) {
	app, _, _ := setupAuth(t)

	assert.Equal(t, fiber.StatusBadRequest, login(t, app, "priya@example.com", "").Code)
	assert.Equal(t, fiber.StatusUnauthorized, login(t, app, "nobody@example.com", "Sun$hare1").Code)

	res := login(t, app, "priya@example.com", "wrong")
	assert.Equal(t, fiber.StatusUnauthorized, res.Code)
	assert.Contains(t, string(res.Body), authsvc.ErrInvalidCredentials.Error())
}

func TestLogin_LookupFailureIs500(t *testing.T) {
	app, h, _ := setupAuth(t)
	h.UserFinder = failingFinder{}
	assert.Equal(t, fiber.StatusInternalServerError, login(t, app, "priya@example.com", "Sun$hare1").Code)
}

func TestLogin_MeLogout(t *testing.T) {
	app, _, rdb := setupAuth(t)
	ctx := context.Background()

	res := login(t, app, "Priya@Example.com", "Sun$hare1")
	require.Equal(t, fiber.StatusOK, res.Code)
	require.NotEmpty(t, res.Cookies)
	assert.Contains(t, res.Cookies[0], middleware.SessionCookieName+"=")

	var out struct {
		Data struct {
			User middleware.SessionUser `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(res.Body, &out))
	assert.Equal(t, "priya@example.com", out.Data.User.Email)
	assert.Equal(t, constants.Customer, out.Data.User.Role)

	keys, err := rdb.Keys(ctx, middleware.UserSessionsPrefix+"*").Result()
	require.NoError(t, err)
	require.Len(t, keys, 1)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Cookie", sessionCookie(res.Cookies[0]))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("DELETE", "/logout", nil)
	req.Header.Set("Cookie", sessionCookie(res.Cookies[0]))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	members, err := rdb.SMembers(ctx, keys[0]).Result()
	require.NoError(t, err)
	assert.Empty(t, members)
	sessions, err := rdb.Keys(ctx, middleware.SessionRedisPrefix+"*").Result()
	require.NoError(t, err)
	assert.Empty(t, sessions)

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Cookie", sessionCookie(res.Cookies[0]))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestMe_NoSession(t *testing.T) {
	app, _, _ := setupAuth(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLogout_NoSessionClearsCookie(t *testing.T) {
	app, _, _ := setupAuth(t)
	resp, err := app.Test(httptest.NewRequest("DELETE", "/logout", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Values("Set-Cookie"))
}
