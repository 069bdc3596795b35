package service

import (
	"testing"

	"github.com/wricardo/scrabble-duel/game/engine"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Command
		wantErr bool
	}{
		{
			name:  "placement horizontal",
			input: "!placer h8h bonjour",
			want:  Command{Kind: CommandPlace, Placement: engine.Placement{Position: engine.Position{Row: 7, Col: 7}, Axis: engine.Horizontal, Letters: "BONJOUR"}},
		},
		{
			name:  "placement with a blank",
			input: "!placer a1v cHat",
			want:  Command{Kind: CommandPlace, Placement: engine.Placement{Position: engine.Position{Row: 0, Col: 0}, Axis: engine.Vertical, Letters: "ChAT"}},
		},
		{
			name:  "single letter without axis",
			input: "!placer o15 s",
			want:  Command{Kind: CommandPlace, Placement: engine.Placement{Position: engine.Position{Row: 14, Col: 14}, Axis: engine.Horizontal, Letters: "S"}},
		},
		{name: "accented exchange", input: "!échanger ab*", want: Command{Kind: CommandExchange, Letters: "AB*"}},
		{name: "plain exchange", input: "!echanger e", want: Command{Kind: CommandExchange, Letters: "E"}},
		{name: "pass", input: "  !passer  ", want: Command{Kind: CommandPass}},
		{name: "hint", input: "!indice", want: Command{Kind: CommandHint}},
		{name: "accented reserve", input: "!réserve", want: Command{Kind: CommandReserve}},

		{name: "unknown", input: "!jouer", wantErr: true},
		{name: "pass with argument", input: "!passer maintenant", wantErr: true},
		{name: "missing axis", input: "!placer h8 chat", wantErr: true},
		{name: "row out of board", input: "!placer p8h chat", wantErr: true},
		{name: "column out of board", input: "!placer h16h chat", wantErr: true},
		{name: "column zero", input: "!placer h0h chat", wantErr: true},
		{name: "digit in letters", input: "!placer h8h ch4t", wantErr: true},
		{name: "too many letters", input: "!placer a1h abcdefgh", wantErr: true},
		{name: "exchange upper case", input: "!échanger AB", wantErr: true},
		{name: "exchange too many", input: "!échanger abcdefgh", wantErr: true},
		{name: "exchange missing letters", input: "!échanger", wantErr: true},
		{name: "not a command", input: "bonjour", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommand(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected an error for %q, got %+v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestParsedPlacementRoundTripsNotation(t *testing.T) {
	cmd, err := ParseCommand("!placer h8h bonjouR")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := cmd.Placement.Notation(); got != "h8h bonjouR" {
		t.Errorf("Expected notation %q, got %q", "h8h bonjouR", got)
	}
}

func TestIsCommand(t *testing.T) {
	if !IsCommand(" !passer") {
		t.Error("Expected a line starting with ! to be a command")
	}
	if IsCommand("salut !") {
		t.Error("Expected plain chat not to be a command")
	}
}
