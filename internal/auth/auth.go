// Package auth exposes the account calls behind the login and registration
// screens.  Successful calls persist the issued token pair and identity into
// the session store so subsequent requests are authenticated.
package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iliyamo/cinema-booking-client/internal/api"
	"github.com/iliyamo/cinema-booking-client/internal/model"
	"github.com/iliyamo/cinema-booking-client/internal/session"
)

// Service wraps the auth endpoints.
type Service struct {
	api     *api.Client
	session *session.Session
}

// New builds a Service over the shared API client and session.
func New(client *api.Client, sess *session.Session) *Service {
	return &Service{api: client, session: sess}
}

// authResponse is the shape of login/register responses.
type authResponse struct {
	User         model.User `json:"user"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
}

// Login authenticates with email and password and persists the session.
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, error) {
	raw, err := s.api.Post(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	return s.persist(raw)
}

// Register creates an account and persists the session returned with it.
func (s *Service) Register(ctx context.Context, email, password, name string) (*model.User, error) {
	raw, err := s.api.Post(ctx, "/auth/register", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	})
	if err != nil {
		return nil, err
	}
	return s.persist(raw)
}

// Logout revokes the session server-side, then clears local state no matter
// what the call returned.  A dead backend must not trap the user in a
// signed-in client.
func (s *Service) Logout(ctx context.Context) error {
	_, err := s.api.Post(ctx, "/auth/logout", map[string]string{
		"refreshToken": s.session.RefreshToken(),
	})
	s.session.Clear()
	return err
}

// Me fetches the identity for the current access token.
func (s *Service) Me(ctx context.Context) (*model.User, error) {
	raw, err := s.api.Get(ctx, "/auth/me")
	if err != nil {
		return nil, err
	}
	var u model.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}

func (s *Service) persist(raw json.RawMessage) (*model.User, error) {
	var resp authResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode auth response: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("auth response missing access token")
	}
	if err := s.session.SetTokens(resp.AccessToken, resp.RefreshToken); err != nil {
		return nil, err
	}
	if err := s.session.SetUser(resp.User); err != nil {
		return nil, err
	}
	return &resp.User, nil
}
