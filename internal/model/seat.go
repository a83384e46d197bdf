package model

// SeatSnapshot is the authoritative-as-of-last-update occupancy of one
// showtime's seat map.  The backend serialises it with camelCase keys; this
// struct mirrors that wire contract exactly.
//
// Fields:
//  ShowtimeID     – showtime the snapshot belongs to, immutable for its lifetime.
//  BookedSeats    – seat codes permanently sold.
//  LockedSeats    – seat codes temporarily held by any user, including the
//                   local user's optimistic picks.
//  TotalSeats     – total seat count, server-derived.
//  AvailableSeats – free seat count, server-derived; never recomputed locally.
type SeatSnapshot struct {
	ShowtimeID     string   `json:"showtimeId"`
	BookedSeats    []string `json:"bookedSeats"`
	LockedSeats    []string `json:"lockedSeats"`
	TotalSeats     int      `json:"totalSeats"`
	AvailableSeats int      `json:"availableSeats"`
}

// Clone returns a deep copy so callers can hand snapshots out without
// aliasing the channel's internal state.
func (s *SeatSnapshot) Clone() *SeatSnapshot {
	if s == nil {
		return nil
	}
	cp := *s
	cp.BookedSeats = append([]string(nil), s.BookedSeats...)
	cp.LockedSeats = append([]string(nil), s.LockedSeats...)
	return &cp
}

// MergeLocked unions seats into LockedSeats, preserving order of first
// appearance and never producing duplicates.
func (s *SeatSnapshot) MergeLocked(seats []string) {
	seen := make(map[string]struct{}, len(s.LockedSeats)+len(seats))
	for _, code := range s.LockedSeats {
		seen[code] = struct{}{}
	}
	for _, code := range seats {
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		s.LockedSeats = append(s.LockedSeats, code)
	}
}
