// Package catalog exposes the read-only browse endpoints: movies, showtimes
// and the one-shot seat snapshot fetch the realtime channel uses for its
// initial state.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iliyamo/cinema-booking-client/internal/api"
	"github.com/iliyamo/cinema-booking-client/internal/model"
)

// Service wraps the catalog endpoints.
type Service struct {
	api *api.Client
}

// New builds a Service over the shared API client.
func New(client *api.Client) *Service {
	return &Service{api: client}
}

// Movies lists the currently screening movies.
func (s *Service) Movies(ctx context.Context) ([]model.Movie, error) {
	raw, err := s.api.Get(ctx, "/movies")
	if err != nil {
		return nil, err
	}
	var movies []model.Movie
	if err := json.Unmarshal(raw, &movies); err != nil {
		return nil, fmt.Errorf("decode movies: %w", err)
	}
	return movies, nil
}

// Showtimes lists the scheduled screenings of one movie.
func (s *Service) Showtimes(ctx context.Context, movieID string) ([]model.Showtime, error) {
	raw, err := s.api.Get(ctx, "/movies/"+movieID+"/showtimes")
	if err != nil {
		return nil, err
	}
	var showtimes []model.Showtime
	if err := json.Unmarshal(raw, &showtimes); err != nil {
		return nil, fmt.Errorf("decode showtimes: %w", err)
	}
	return showtimes, nil
}

// Seats fetches the current seat snapshot for a showtime.
func (s *Service) Seats(ctx context.Context, showtimeID string) (*model.SeatSnapshot, error) {
	raw, err := s.api.Get(ctx, "/showtimes/"+showtimeID+"/seats")
	if err != nil {
		return nil, err
	}
	var snap model.SeatSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode seat snapshot: %w", err)
	}
	return &snap, nil
}
