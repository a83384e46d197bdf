package model

import (
	"reflect"
	"testing"
)

func TestMergeLocked(t *testing.T) {
	s := &SeatSnapshot{LockedSeats: []string{"A1", "A2"}}
	s.MergeLocked([]string{"A2", "B1", "A1", "B1"})
	if !reflect.DeepEqual(s.LockedSeats, []string{"A1", "A2", "B1"}) {
		t.Fatalf("locked = %v", s.LockedSeats)
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	s := &SeatSnapshot{ShowtimeID: "show123", LockedSeats: []string{"A1"}}
	cp := s.Clone()
	cp.LockedSeats[0] = "Z9"
	if s.LockedSeats[0] != "A1" {
		t.Fatal("Clone must copy slices")
	}
	var nilSnap *SeatSnapshot
	if nilSnap.Clone() != nil {
		t.Fatal("nil clone must stay nil")
	}
}
