package handlers

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/akorchagin/pollster/internal/logger"
	"github.com/akorchagin/pollster/internal/repository/postgres"
	"github.com/akorchagin/pollster/internal/service/auth"
	"github.com/akorchagin/pollster/internal/service/auth/tokenmanager"
	"github.com/akorchagin/pollster/internal/service/poll"
	"github.com/akorchagin/pollster/internal/testutil"
)

// withServer runs the full production router over a rolled-back transaction
func withServer(dbpool *pgxpool.Pool, t *testing.T, tokenCfg tokenmanager.Config, fn func(url string)) {
	t.Helper()

	if tokenCfg.SecretKey == "" {
		tokenCfg.SecretKey = "test-secret"
	}

	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		store := postgres.NewStorage(tx)

		tokenManager, err := tokenmanager.New(tokenCfg, store.Refresh())
		require.NoError(t, err, "token manager should be created without errors")

		authService, err := auth.NewService(auth.Config{}, tokenManager, store.User())
		require.NoError(t, err, "auth service starting error")

		pollService := poll.NewService(store.Poll())

		srv := httptest.NewServer(NewRouter(authService, pollService, nil, logger.NewNoOp()))
		defer srv.Close()

		fn(srv.URL)
	})
}

// signupUser registers a user over the api and returns the issued auth cookies
func signupUser(t *testing.T, url string, email string) []*http.Cookie {
	t.Helper()

	data := fmt.Sprintf(`{"name": "Kim", "last_name": "Lee", "email": %q, "password": "StrongEnoughPassword"}`, email)
	resp, err := http.Post(url+"/api/auth/signup", "application/json", strings.NewReader(data))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equalf(t, http.StatusCreated, resp.StatusCode, "signup failed. Body: %s", string(body))
	return resp.Cookies()
}

// doJSON sends a request with the given cookies and returns status and body
func doJSON(t *testing.T, method string, url string, body string, cookies []*http.Cookie) (int, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode, string(respBody)
}

func cookieByName(t *testing.T, cookies []*http.Cookie, name string) *http.Cookie {
	t.Helper()

	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not found", name)
	return nil
}
