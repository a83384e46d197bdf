package model

import "time"

// Movie is a catalog entry used by the browsing screens.
type Movie struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Duration int    `json:"duration"` // minutes
	Rating   string `json:"rating"`
	Poster   string `json:"poster"`
}

// Showtime is one scheduled screening of a movie.
type Showtime struct {
	ID       string    `json:"id"`
	MovieID  string    `json:"movieId"`
	Cinema   string    `json:"cinema"`
	Hall     string    `json:"hall"`
	StartsAt time.Time `json:"startsAt"`
	Price    int64     `json:"price"`
}
