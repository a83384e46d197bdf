package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking-client/internal/api"
	"github.com/iliyamo/cinema-booking-client/internal/config"
	"github.com/iliyamo/cinema-booking-client/internal/session"
	"github.com/iliyamo/cinema-booking-client/internal/store"
)

func newService(t *testing.T, baseURL string) (*Service, *session.Session) {
	t.Helper()
	sess := session.New(store.NewMemoryStore())
	cfg := config.Config{APIBaseURL: baseURL, HTTPTimeout: 5 * time.Second}
	return New(api.New(cfg, sess, nil, nil), sess), sess
}

func TestLoginPersistsSession(t *testing.T) {
	e := echo.New()
	e.POST("/auth/login", func(c echo.Context) error {
		var req map[string]string
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
		}
		if req["email"] != "a@b.c" || req["password"] != "pw" {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid credentials"})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"user":         echo.Map{"id": "u1", "email": "a@b.c", "role": "CUSTOMER"},
			"accessToken":  "acc",
			"refreshToken": "ref",
		})
	})
	srv := httptest.NewServer(e)
	defer srv.Close()

	svc, sess := newService(t, srv.URL)
	u, err := svc.Login(context.Background(), "a@b.c", "pw")
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != "u1" {
		t.Fatalf("user = %+v", u)
	}
	if sess.AccessToken() != "acc" || sess.RefreshToken() != "ref" {
		t.Fatal("tokens not persisted")
	}
	if stored := sess.User(); stored == nil || stored.ID != "u1" {
		t.Fatalf("identity not persisted, got %+v", stored)
	}
}

func TestLoginFailureLeavesSessionUntouched(t *testing.T) {
	e := echo.New()
	e.POST("/auth/login", func(c echo.Context) error {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid credentials"})
	})
	srv := httptest.NewServer(e)
	defer srv.Close()

	svc, sess := newService(t, srv.URL)
	if _, err := svc.Login(context.Background(), "a@b.c", "nope"); err == nil {
		t.Fatal("expected error")
	}
	if sess.AccessToken() != "" {
		t.Fatal("failed login must not persist tokens")
	}
}

func TestLogoutClearsSessionEvenWhenBackendFails(t *testing.T) {
	e := echo.New()
	e.POST("/auth/logout", func(c echo.Context) error {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "logout failed"})
	})
	srv := httptest.NewServer(e)
	defer srv.Close()

	svc, sess := newService(t, srv.URL)
	_ = sess.SetTokens("acc", "ref")

	if err := svc.Logout(context.Background()); err == nil {
		t.Fatal("backend error should propagate")
	}
	if sess.AccessToken() != "" || sess.RefreshToken() != "" {
		t.Fatal("local session must be cleared regardless")
	}
}
