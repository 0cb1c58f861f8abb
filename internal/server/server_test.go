package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/songshift/internal/shared"
	"golang.org/x/oauth2"
)

func fakeExchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if code == "bad" {
		return nil, errors.New("invalid_grant")
	}
	return &oauth2.Token{AccessToken: "token-" + code}, nil
}

func TestOAuthHandler(t *testing.T) {
	t.Run("successful callback", func(t *testing.T) {
		h := NewOAuthHandler("/callback", "xyz", fakeExchange)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=xyz&code=abc", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "authorized") {
			t.Errorf("expected success page, got %s", rec.Body.String())
		}

		result := <-h.Result()
		if result.Error() != nil {
			t.Fatalf("expected no error, got %v", result.Error())
		}
		if result.Token.AccessToken != "token-abc" {
			t.Errorf("expected token-abc, got %s", result.Token.AccessToken)
		}
	})

	t.Run("state mismatch", func(t *testing.T) {
		h := NewOAuthHandler("/callback", "xyz", fakeExchange)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=other&code=abc", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
		if result := <-h.Result(); !errors.Is(result.Error(), shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", result.Error())
		}
	})

	t.Run("denied authorization", func(t *testing.T) {
		h := NewOAuthHandler("/callback", "xyz", fakeExchange)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=xyz&error=access_denied", nil))

		result := <-h.Result()
		if !errors.Is(result.Error(), shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", result.Error())
		}
		if !strings.Contains(result.Error().Error(), "access_denied") {
			t.Errorf("expected error to mention access_denied, got %v", result.Error())
		}
	})

	t.Run("exchange failure", func(t *testing.T) {
		h := NewOAuthHandler("/callback", "xyz", fakeExchange)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=xyz&code=bad", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", rec.Code)
		}
		if result := <-h.Result(); result.Error() == nil {
			t.Error("expected exchange error")
		}
	})

	t.Run("only first callback counts", func(t *testing.T) {
		h := NewOAuthHandler("/callback", "xyz", fakeExchange)

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?state=xyz&code=first", nil))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=xyz&code=second", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected replay to be rejected, got %d", rec.Code)
		}

		if result := <-h.Result(); result.Token.AccessToken != "token-first" {
			t.Errorf("expected first token, got %s", result.Token.AccessToken)
		}
		if _, ok := <-h.Result(); ok {
			t.Error("expected channel to be closed after one result")
		}
	})

	t.Run("default route", func(t *testing.T) {
		h := NewOAuthHandler("", "xyz", fakeExchange)
		if routes := h.Routes(); len(routes) != 1 || routes[0] != "/callback" {
			t.Errorf("expected [/callback], got %v", routes)
		}
	})
}

func TestBasicRouter(t *testing.T) {
	t.Run("middleware order", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mw("first"), mw("second"))
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

		if got := strings.Join(order, ","); got != "first,second,handler" {
			t.Errorf("expected first,second,handler, got %s", got)
		}
	})

	t.Run("method filtering", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status 405, got %d", rec.Code)
		}
	})

	t.Run("logging middleware passes through", func(t *testing.T) {
		router := NewBasicRouter()
		router.Use(LoggingMiddleware(shared.DiscardLogger()))
		router.Handler(NewOAuthHandler("/cb", "s", fakeExchange))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cb?state=s&code=c", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
	})
}

func TestCapture(t *testing.T) {
	t.Run("captures one redirect", func(t *testing.T) {
		h := NewOAuthHandler("/callback", "xyz", fakeExchange)

		token, err := Capture(context.Background(), "127.0.0.1:0", h, 5*time.Second, nil, func(addr string) error {
			go func() {
				resp, err := http.Get(fmt.Sprintf("http://%s/callback?state=xyz&code=abc", addr))
				if err == nil {
					resp.Body.Close()
				}
			}()
			return nil
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if token.AccessToken != "token-abc" {
			t.Errorf("expected token-abc, got %s", token.AccessToken)
		}
	})

	t.Run("times out", func(t *testing.T) {
		h := NewOAuthHandler("/callback", "xyz", fakeExchange)

		start := time.Now()
		_, err := Capture(context.Background(), "127.0.0.1:0", h, 50*time.Millisecond, nil, nil)
		if !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
		if elapsed := time.Since(start); elapsed > 5*time.Second {
			t.Errorf("expected prompt timeout, took %s", elapsed)
		}
	})

	t.Run("ready failure aborts", func(t *testing.T) {
		h := NewOAuthHandler("/callback", "xyz", fakeExchange)
		want := errors.New("no browser")

		_, err := Capture(context.Background(), "127.0.0.1:0", h, time.Second, nil, func(string) error { return want })
		if !errors.Is(err, want) {
			t.Errorf("expected ready error, got %v", err)
		}
	})

	t.Run("address in use", func(t *testing.T) {
		first := NewCallbackServer("127.0.0.1:0", NewOAuthHandler("/callback", "a", fakeExchange), nil)
		if err := first.Start(); err != nil {
			t.Fatalf("failed to start: %v", err)
		}
		defer first.Shutdown(context.Background())

		_, err := Capture(context.Background(), first.Addr(), NewOAuthHandler("/callback", "b", fakeExchange), time.Second, nil, nil)
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Capture(ctx, "127.0.0.1:0", NewOAuthHandler("/callback", "xyz", fakeExchange), time.Second, nil, nil)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
