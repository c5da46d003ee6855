package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/akorchagin/pollster/internal/service/auth"
	"github.com/akorchagin/pollster/internal/service/auth/tokenmanager"
	"github.com/akorchagin/pollster/internal/testutil"
)

func Test_PollHandlers(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	const createPollBody = `{"question": "Best fruit?", "choices": ["Apple", "Banana"]}`

	createPoll := func(t *testing.T, url string, cookies []*http.Cookie) PollResponse {
		t.Helper()

		code, body := doJSON(t, http.MethodPost, url+"/api/votes", createPollBody, cookies)
		require.Equalf(t, http.StatusCreated, code, "poll creation failed. Body: %s", body)

		var p PollResponse
		require.NoError(t, json.Unmarshal([]byte(body), &p))
		require.Len(t, p.Choices, 2)
		return p
	}

	t.Run("create poll ok", func(t *testing.T) {
		withServer(pg.Pool, t, tokenmanager.Config{}, func(url string) {
			cookies := signupUser(t, url, "kim@example.com")

			p := createPoll(t, url, cookies)

			require.Equal(t, "Best fruit?", p.Question)
			require.Equal(t, "Apple", p.Choices[0].Text)
			require.Equal(t, int64(0), p.Choices[0].Votes)
			require.Equal(t, "Banana", p.Choices[1].Text)
			require.NotEmpty(t, p.CreatedBy)
		})
	})

	t.Run("create poll without token fails", func(t *testing.T) {
		withServer(pg.Pool, t, tokenmanager.Config{}, func(url string) {
			code, body := doJSON(t, http.MethodPost, url+"/api/votes", createPollBody, nil)

			require.Equalf(t, http.StatusUnauthorized, code, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Not authorized, no token"
				}`, body)
		})
	})

	t.Run("create poll with expired token asks for refresh", func(t *testing.T) {
		withServer(pg.Pool, t, tokenmanager.Config{AccessTTL: -time.Minute}, func(url string) {
			cookies := signupUser(t, url, "kim@example.com")

			code, body := doJSON(t, http.MethodPost, url+"/api/votes", createPollBody, cookies)

			require.Equalf(t, http.StatusUnauthorized, code, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Access token expired. Please refresh.",
					"requiresRefresh": true
				}`, body)
		})
	})

	t.Run("create poll with tampered token fails", func(t *testing.T) {
		withServer(pg.Pool, t, tokenmanager.Config{}, func(url string) {
			cookies := []*http.Cookie{{Name: auth.AccessCookieName, Value: "not-a-jwt"}}

			code, body := doJSON(t, http.MethodPost, url+"/api/votes", createPollBody, cookies)

			require.Equalf(t, http.StatusUnauthorized, code, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Not authorized, token failed"
				}`, body)
		})
	})

	t.Run("create duplicate question fails", func(t *testing.T) {
		withServer(pg.Pool, t, tokenmanager.Config{}, func(url string) {
			cookies := signupUser(t, url, "kim@example.com")
			createPoll(t, url, cookies)

			code, body := doJSON(t, http.MethodPost, url+"/api/votes", createPollBody, cookies)

			require.Equalf(t, http.StatusBadRequest, code, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "A poll with this question already exists."
				}`, body)
		})
	})

	t.Run("create poll with one choice fails validation", func(t *testing.T) {
		withServer(pg.Pool, t, tokenmanager.Config{}, func(url string) {
			cookies := signupUser(t, url, "kim@example.com")

			data := `{"question": "Best fruit?", "choices": ["Apple"]}`
			code, body := doJSON(t, http.MethodPost, url+"/api/votes", data, cookies)

			require.Equalf(t, http.StatusBadRequest, code, "not expected code. Body: %s", body)
			require.Contains(t, body, "validation_failed")
		})
	})

	t.Run("cast vote ok", func(t *testing.T) {
		withServer(pg.Pool, t, tokenmanager.Config{}, func(url string) {
			cookies := signupUser(t, url, "kim@example.com")
			p := createPoll(t, url, cookies)

			data := fmt.Sprintf(`{"choiceId": %q}`, p.Choices[0].ID)
			code, body := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/votes/%s/cast", url, p.ID), data, cookies)

			require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)
			require.JSONEq(t, fmt.Sprintf(`
				{
					"message": "Vote cast successfully",
					"results": {
						"id": %q,
						"question": "Best fruit?",
						"choices": [
							{"id": %q, "text": "Apple", "votes": 1, "percentage": 100},
							{"id": %q, "text": "Banana", "votes": 0, "percentage": 0}
						],
						"totalVotes": 1
					}
				}`, p.ID, p.Choices[0].ID, p.Choices[1].ID), body)
		})
	})

	t.Run("cast vote twice fails", func(t *testing.T) {
		withServer(pg.Pool, t, tokenmanager.Config{}, func(url string) {
			cookies := signupUser(t, url, "kim@example.com")
			p := createPoll(t, url, cookies)

			data := fmt.Sprintf(`{"choiceId": %q}`, p.Choices[0].ID)
			castURL := fmt.Sprintf("%s/api/votes/%s/cast", url, p.ID)

			code, body := doJSON(t, http.MethodPost, castURL, data, cookies)
			require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)

			// Second attempt picks the other choice and still must be rejected
			data = fmt.Sprintf(`{"choiceId": %q}`, p.Choices[1].ID)
			code, body = doJSON(t, http.MethodPost, castURL, data, cookies)
			require.Equalf(t, http.StatusBadRequest, code, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "You have already voted in this poll."
				}`, body)
		})
	})

	t.Run("cast vote with unknown choice fails", func(t *testing.T) {
		withServer(pg.Pool, t, tokenmanager.Config{}, func(url string) {
			cookies := signupUser(t, url, "kim@example.com")
			p := createPoll(t, url, cookies)

			data := `{"choiceId": "0b879174-4610-4860-a2b5-cb2d2dbd29b8"}`
			code, body := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/votes/%s/cast", url, p.ID), data, cookies)

			require.Equalf(t, http.StatusBadRequest, code, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Invalid choice ID for this poll."
				}`, body)
		})
	})

	t.Run("cast vote in unknown poll fails", func(t *testing.T) {
		withServer(pg.Pool, t, tokenmanager.Config{}, func(url string) {
			cookies := signupUser(t, url, "kim@example.com")
			p := createPoll(t, url, cookies)

			data := fmt.Sprintf(`{"choiceId": %q}`, p.Choices[0].ID)
			code, body := doJSON(t, http.MethodPost, url+"/api/votes/0b879174-4610-4860-a2b5-cb2d2dbd29b8/cast", data, cookies)

			require.Equalf(t, http.StatusNotFound, code, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Vote poll not found."
				}`, body)
		})
	})

	t.Run("results are public", func(t *testing.T) {
		withServer(pg.Pool, t, tokenmanager.Config{}, func(url string) {
			cookies := signupUser(t, url, "kim@example.com")
			p := createPoll(t, url, cookies)

			// No cookies on the results request
			code, body := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/votes/%s/results", url, p.ID), "", nil)

			require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)
			require.JSONEq(t, fmt.Sprintf(`
				{
					"id": %q,
					"question": "Best fruit?",
					"choices": [
						{"id": %q, "text": "Apple", "votes": 0, "percentage": 0},
						{"id": %q, "text": "Banana", "votes": 0, "percentage": 0}
					],
					"totalVotes": 0
				}`, p.ID, p.Choices[0].ID, p.Choices[1].ID), body)
		})
	})

	t.Run("results for unknown poll fails", func(t *testing.T) {
		withServer(pg.Pool, t, tokenmanager.Config{}, func(url string) {
			code, body := doJSON(t, http.MethodGet, url+"/api/votes/0b879174-4610-4860-a2b5-cb2d2dbd29b8/results", "", nil)

			require.Equalf(t, http.StatusNotFound, code, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Vote poll not found."
				}`, body)
		})
	})
}
