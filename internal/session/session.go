// Package session manages the locally persisted auth session: the access and
// refresh token pair plus the signed-in identity.  All state lives behind a
// store.Store so the session itself stays stateless and test-friendly.
package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/iliyamo/cinema-booking-client/internal/model"
	"github.com/iliyamo/cinema-booking-client/internal/store"
)

// Session reads and writes the three session keys.  Methods never fail on a
// malformed stored value; the worst outcome is being treated as a guest.
type Session struct {
	store store.Store
}

// New wraps the given store.
func New(s store.Store) *Session {
	return &Session{store: s}
}

// AccessToken returns the stored access token, empty when signed out.
func (s *Session) AccessToken() string {
	v, _ := s.store.Get(store.KeyAccessToken)
	return v
}

// RefreshToken returns the stored refresh token, empty when signed out.
func (s *Session) RefreshToken() string {
	v, _ := s.store.Get(store.KeyRefreshToken)
	return v
}

// SetAccessToken persists a freshly issued access token, leaving the refresh
// token in place.  Used after a refresh cycle.
func (s *Session) SetAccessToken(token string) error {
	return s.store.Set(store.KeyAccessToken, token)
}

// SetTokens persists a full token pair after login or registration.
func (s *Session) SetTokens(access, refresh string) error {
	if err := s.store.Set(store.KeyAccessToken, access); err != nil {
		return err
	}
	return s.store.Set(store.KeyRefreshToken, refresh)
}

// SetUser persists the identity returned by the auth endpoints.
func (s *Session) SetUser(u model.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.store.Set(store.KeyUser, string(data))
}

// User returns the stored identity.  A malformed "user" value falls back to
// the access token's claims; if neither yields an identity, nil is returned
// and the caller should treat the user as a guest.
func (s *Session) User() *model.User {
	if raw, _ := s.store.Get(store.KeyUser); raw != "" {
		var u model.User
		if err := json.Unmarshal([]byte(raw), &u); err == nil && u.ID != "" {
			return &u
		}
	}
	return s.userFromToken()
}

// UserID resolves an identifier for channel membership: the stored identity
// when present, else a freshly minted guest id.  Guest ids are namespaced so
// they can never collide with real account ids.
func (s *Session) UserID() string {
	if u := s.User(); u != nil {
		return u.ID
	}
	return "guest-" + uuid.NewString()
}

// TokenExpiry reports when the stored access token expires.  The token is
// decoded without signature verification; the client holds no signing secret
// and only needs the timestamp for display purposes.
func (s *Session) TokenExpiry() (time.Time, error) {
	raw := s.AccessToken()
	if raw == "" {
		return time.Time{}, fmt.Errorf("no access token stored")
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, fmt.Errorf("decode access token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("access token has no exp claim")
	}
	return exp.Time, nil
}

// Clear wipes every session key.  Called on logout and on refresh failure,
// after which the user must authenticate again.
func (s *Session) Clear() {
	_ = s.store.Delete(store.KeyAccessToken)
	_ = s.store.Delete(store.KeyRefreshToken)
	_ = s.store.Delete(store.KeyUser)
}

// userFromToken rebuilds a minimal identity from the access token claims when
// the stored "user" value is missing or corrupt.
func (s *Session) userFromToken() *model.User {
	raw := s.AccessToken()
	if raw == "" {
		return nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil
	}
	u := &model.User{ID: sub}
	if role, ok := claims["role"].(string); ok {
		u.Role = role
	}
	if email, ok := claims["email"].(string); ok {
		u.Email = email
	}
	return u
}
