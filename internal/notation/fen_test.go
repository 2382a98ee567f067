package notation

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/benbeisheim/chess-ai-backend/internal/model"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1"

func TestEncodeInitialBoard(t *testing.T) {
	board := model.NewBoard()
	if got := Encode(&board, model.White, 1); got != startFEN {
		t.Errorf("Encode = %q, want %q", got, startFEN)
	}
}

func TestEncodeAfterMove(t *testing.T) {
	board := model.NewBoard()
	next := model.MakeMove(&board, model.Move{
		From:  model.Position{Row: 6, Col: 4},
		To:    model.Position{Row: 4, Col: 4},
		Piece: model.Piece{Type: model.Pawn, Color: model.White},
	})
	want := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b - - 0 1"
	if got := Encode(&next, model.Black, 1); got != want {
		t.Errorf("Encode = %q, want %q", got, want)
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		turn model.Color
	}{
		{name: "start", fen: startFEN, turn: model.White},
		{name: "midgame black to move", fen: "r1bqkb1r/pppp1ppp/2n2n2/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R b - - 0 4", turn: model.Black},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board, turn, err := Decode(tt.fen)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if turn != tt.turn {
				t.Errorf("turn = %s, want %s", turn, tt.turn)
			}
			if got := Placement(&board); !strings.HasPrefix(tt.fen, got+" ") {
				t.Errorf("Placement = %q, want prefix of %q", got, tt.fen)
			}
		})
	}
}

func TestDecodeMatchesNewBoard(t *testing.T) {
	board, _, err := Decode("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(model.NewBoard(), board); diff != "" {
		t.Errorf("decoded board mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for _, fen := range []string{"", "not a fen at all", "rnbqkbnr/pppppppp/8/8 w - - 0 1"} {
		if _, _, err := Decode(fen); !errors.Is(err, ErrInvalidFEN) {
			t.Errorf("Decode(%q) err = %v, want ErrInvalidFEN", fen, err)
		}
	}
}
