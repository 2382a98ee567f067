package service

import (
	"errors"
	"testing"

	"github.com/benbeisheim/chess-ai-backend/internal/model"
)

func TestGameManager(t *testing.T) {
	gm := NewGameManager()
	game := model.NewGame("g1", "alice", model.White, "easy")

	if err := gm.AddGame(game); err != nil {
		t.Fatalf("AddGame: %v", err)
	}
	if err := gm.AddGame(game); err == nil {
		t.Errorf("duplicate AddGame succeeded")
	}
	if got, err := gm.GetGame("g1"); err != nil || got != game {
		t.Errorf("GetGame = %v, %v", got, err)
	}
	if gm.Count() != 1 {
		t.Errorf("Count = %d", gm.Count())
	}

	gm.RemoveGame("g1")
	if _, err := gm.GetGame("g1"); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("GetGame after remove err = %v", err)
	}
	if err := gm.RegisterConnection("g1", "alice", nil); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("RegisterConnection err = %v", err)
	}
}
