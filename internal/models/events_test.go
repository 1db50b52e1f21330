package models

import (
	"testing"
)

func TestParseBoardKind(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    BoardKind
		wantErr bool
	}{
		{"enter", "Enter", BoardEnter, false},
		{"exit", "Exit", BoardExit, false},
		{"lowercase rejected", "enter", "", true},
		{"unknown rejected", "Hop", "", true},
		{"empty rejected", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBoardKind(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseBoardKind(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Errorf("ParseBoardKind(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseBoardKind(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestJourneyStatusTerminal(t *testing.T) {
	if JourneyInProgress.Terminal() {
		t.Error("expected in-progress to be non-terminal")
	}
	if !JourneyCompleted.Terminal() {
		t.Error("expected completed to be terminal")
	}
	if !JourneyCancelled.Terminal() {
		t.Error("expected cancelled to be terminal")
	}
}

func TestBusAvailableSeats(t *testing.T) {
	bus := &Bus{PassengerCount: 12, MaxPassengerCount: 40}
	if got := bus.AvailableSeats(); got != 28 {
		t.Errorf("AvailableSeats() = %d, want 28", got)
	}
}

func TestParseStopKind(t *testing.T) {
	if _, err := ParseStopKind("Stop"); err != nil {
		t.Errorf("ParseStopKind(Stop) unexpected error: %v", err)
	}
	if _, err := ParseStopKind("Terminal"); err != nil {
		t.Errorf("ParseStopKind(Terminal) unexpected error: %v", err)
	}
	if _, err := ParseStopKind("Depot"); err == nil {
		t.Error("ParseStopKind(Depot) expected error")
	}
}
