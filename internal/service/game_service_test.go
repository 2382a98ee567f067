package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/benbeisheim/chess-ai-backend/internal/ai"
	"github.com/benbeisheim/chess-ai-backend/internal/dao"
	"github.com/benbeisheim/chess-ai-backend/internal/model"
	"github.com/benbeisheim/chess-ai-backend/internal/notation"
)

func newTestService() (*GameService, *dao.MemoryGameRepository) {
	repo := dao.NewMemoryGameRepository()
	return NewGameService(NewGameManager(), repo, Options{ThinkTimeout: 10 * time.Second}), repo
}

func TestCreateGameValidation(t *testing.T) {
	gs, _ := newTestService()
	ctx := context.Background()

	if _, err := gs.CreateGame(ctx, "alice", CreateGameRequest{Difficulty: "impossible", Color: "white"}); !errors.Is(err, ai.ErrUnknownDifficulty) {
		t.Errorf("bad difficulty err = %v", err)
	}
	if _, err := gs.CreateGame(ctx, "alice", CreateGameRequest{Difficulty: "easy", Color: "green"}); !errors.Is(err, ErrInvalidColor) {
		t.Errorf("bad color err = %v", err)
	}
}

func TestCreateGameAsBlackLetsEngineOpen(t *testing.T) {
	gs, _ := newTestService()
	view, err := gs.CreateGame(context.Background(), "alice", CreateGameRequest{Difficulty: "medium", Color: "black"})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if len(view.State.MoveHistory) != 1 {
		t.Fatalf("history = %d moves, want the engine's opening move", len(view.State.MoveHistory))
	}
	if view.State.MoveHistory[0].Piece.Color != model.White {
		t.Errorf("opening move by %s", view.State.MoveHistory[0].Piece.Color)
	}
	if view.State.CurrentPlayer != model.Black {
		t.Errorf("current player = %s, want black", view.State.CurrentPlayer)
	}
}

func TestHandleMovePlaysEngineReply(t *testing.T) {
	gs, _ := newTestService()
	ctx := context.Background()
	view, err := gs.CreateGame(ctx, "alice", CreateGameRequest{Difficulty: "hard"})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if view.PlayerColor != model.White || view.Difficulty != "hard" {
		t.Fatalf("game = %s %s", view.PlayerColor, view.Difficulty)
	}

	dests, err := gs.LegalMoves(view.ID, "g1")
	if err != nil {
		t.Fatalf("LegalMoves: %v", err)
	}
	if diff := cmp.Diff([]string{"f3", "h3"}, dests); diff != "" {
		t.Errorf("knight destinations mismatch (-want +got):\n%s", diff)
	}

	after, err := gs.HandleMove(ctx, view.ID, "alice", "e2", "e4")
	if err != nil {
		t.Fatalf("HandleMove: %v", err)
	}
	if n := len(after.State.MoveHistory); n != 2 {
		t.Fatalf("history = %d, want human move plus reply", n)
	}
	reply := after.State.MoveHistory[1]
	if reply.Piece.Color != model.Black {
		t.Errorf("reply by %s", reply.Piece.Color)
	}
	if after.State.CurrentPlayer != model.White {
		t.Errorf("current player = %s", after.State.CurrentPlayer)
	}
}

func TestHandleMoveErrors(t *testing.T) {
	gs, _ := newTestService()
	ctx := context.Background()
	view, err := gs.CreateGame(ctx, "alice", CreateGameRequest{Difficulty: "easy", Color: "white"})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}

	tests := []struct {
		name     string
		gameID   string
		playerID string
		from, to string
		wantErr  error
	}{
		{name: "unknown game", gameID: "nope", playerID: "alice", from: "e2", to: "e4", wantErr: ErrGameNotFound},
		{name: "bad square", gameID: view.ID, playerID: "alice", from: "e9", to: "e4", wantErr: ErrInvalidSquare},
		{name: "illegal", gameID: view.ID, playerID: "alice", from: "e2", to: "e5", wantErr: model.ErrIllegalMove},
		{name: "stranger", gameID: view.ID, playerID: "bob", from: "e2", to: "e4", wantErr: model.ErrNotAuthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := gs.HandleMove(ctx, tt.gameID, tt.playerID, tt.from, tt.to); !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestResignPersistsRecord(t *testing.T) {
	gs, repo := newTestService()
	ctx := context.Background()
	view, err := gs.CreateGame(ctx, "alice", CreateGameRequest{Difficulty: "easy", Color: "white"})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if _, err := gs.Resign(ctx, view.ID, "alice"); err != nil {
		t.Fatalf("Resign: %v", err)
	}

	record, err := repo.GetGame(ctx, view.ID)
	if err != nil {
		t.Fatalf("record not stored: %v", err)
	}
	if record.Result != model.ResultLoss || record.Reason != "resignation" {
		t.Errorf("record result = %s (%s)", record.Result, record.Reason)
	}
	if record.RatingChange != -40 {
		t.Errorf("rating change = %d, want -40 for losing to easy", record.RatingChange)
	}
	if record.FinalFEN != "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1" {
		t.Errorf("final FEN = %q", record.FinalFEN)
	}
	if record.Rating != model.InitialRating || !record.IsPublic {
		t.Errorf("record rating = %d public = %v", record.Rating, record.IsPublic)
	}

	if _, err := gs.GetRecord(ctx, view.ID, "bob"); err != nil {
		t.Errorf("public record hidden from bob: %v", err)
	}
	list, err := gs.ListGames(ctx, "alice", 0, 0)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListGames = %d records, %v", len(list), err)
	}
	if err := gs.DeleteRecord(ctx, view.ID, "bob"); !errors.Is(err, ErrForbidden) {
		t.Errorf("foreign delete err = %v", err)
	}
	if err := gs.DeleteRecord(ctx, view.ID, "alice"); err != nil {
		t.Fatalf("DeleteRecord: %v", err)
	}
	if _, err := gs.GetRecord(ctx, view.ID, "alice"); !errors.Is(err, dao.ErrRecordNotFound) {
		t.Errorf("GetRecord after delete err = %v", err)
	}
}

func TestSuggestMove(t *testing.T) {
	gs, _ := newTestService()
	ctx := context.Background()

	if _, err := gs.SuggestMove(ctx, MoveRequest{Difficulty: "easy"}); !errors.Is(err, ErrMissingBoard) {
		t.Errorf("missing board err = %v", err)
	}
	if _, err := gs.SuggestMove(ctx, MoveRequest{FEN: "garbage", Difficulty: "easy"}); !errors.Is(err, notation.ErrInvalidFEN) {
		t.Errorf("bad fen err = %v", err)
	}

	// white rook can take an undefended queen
	resp, err := gs.SuggestMove(ctx, MoveRequest{FEN: "4k3/8/8/8/R6q/8/8/7K w - - 0 1", Difficulty: "medium"})
	if err != nil {
		t.Fatalf("SuggestMove: %v", err)
	}
	if resp.Move == nil || resp.Move.To != (model.Position{Row: 4, Col: 7}) {
		t.Fatalf("move = %v, want capture on h4", resp.Move)
	}
	if !resp.InCheck {
		t.Errorf("white king on h1 is attacked by the h4 queen")
	}

	var empty model.Board
	resp, err = gs.SuggestMove(ctx, MoveRequest{Board: &empty, Color: "black", Difficulty: "hard"})
	if err != nil {
		t.Fatalf("SuggestMove on empty board: %v", err)
	}
	if resp.Move != nil {
		t.Errorf("empty board produced %v", resp.Move)
	}
}

// stuckEngine never finishes a search until released, and then finds nothing.
type stuckEngine struct {
	release chan struct{}
}

func (e stuckEngine) BestMove(*model.Board, model.Color) *model.Move {
	<-e.release
	return nil
}

func (e stuckEngine) Difficulty() ai.Difficulty { return ai.Hard }

func TestThinkFallsBackWhenBudgetExpires(t *testing.T) {
	repo := dao.NewMemoryGameRepository()
	gs := NewGameService(NewGameManager(), repo, Options{ThinkTimeout: 10 * time.Millisecond})

	release := make(chan struct{})
	defer close(release)

	board := model.NewBoard()
	move := gs.think(context.Background(), stuckEngine{release: release}, board, model.White, true)
	if move == nil {
		t.Fatalf("no move returned, the random fallback did not run")
	}
	if move.Piece.Color != model.White {
		t.Errorf("move for wrong side: %v", move)
	}
}

func TestThinkUsesEngineWithinBudget(t *testing.T) {
	repo := dao.NewMemoryGameRepository()
	gs := NewGameService(NewGameManager(), repo, Options{ThinkTimeout: time.Minute})

	release := make(chan struct{})
	close(release)

	board := model.NewBoard()
	if move := gs.think(context.Background(), stuckEngine{release: release}, board, model.White, true); move != nil {
		t.Errorf("move = %v, want the engine's empty answer", move)
	}
}

func TestRatingChange(t *testing.T) {
	tests := []struct {
		difficulty ai.Difficulty
		result     model.Result
		want       int
	}{
		{ai.Hard, model.ResultWin, 40},
		{ai.Medium, model.ResultWin, 20},
		{ai.Easy, model.ResultWin, 10},
		{ai.Easy, model.ResultLoss, -40},
		{ai.Medium, model.ResultLoss, -20},
		{ai.Hard, model.ResultLoss, -10},
		{ai.Hard, model.ResultDraw, 0},
		{ai.Easy, model.ResultAbandoned, 0},
	}
	for _, tt := range tests {
		if got := RatingChange(tt.difficulty, tt.result); got != tt.want {
			t.Errorf("RatingChange(%s, %s) = %d, want %d", tt.difficulty, tt.result, got, tt.want)
		}
	}
}

func TestPrivateRecordVisibleToOwnerOnly(t *testing.T) {
	gs, _ := newTestService()
	ctx := context.Background()
	private := false
	view, err := gs.CreateGame(ctx, "alice", CreateGameRequest{Difficulty: "easy", Public: &private})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if view.Public {
		t.Fatalf("game should be private")
	}
	if _, err := gs.Resign(ctx, view.ID, "alice"); err != nil {
		t.Fatalf("Resign: %v", err)
	}

	if _, err := gs.GetRecord(ctx, view.ID, "bob"); !errors.Is(err, ErrForbidden) {
		t.Errorf("foreign GetRecord err = %v, want ErrForbidden", err)
	}
	if _, err := gs.GetRecord(ctx, view.ID, "alice"); err != nil {
		t.Errorf("owner GetRecord: %v", err)
	}
}

func TestStatsAccumulateAcrossGames(t *testing.T) {
	gs, repo := newTestService()
	ctx := context.Background()

	fresh, err := gs.PlayerStats(ctx, "alice")
	if err != nil {
		t.Fatalf("PlayerStats: %v", err)
	}
	if fresh.Rating != model.InitialRating || fresh.GamesPlayed != 0 {
		t.Fatalf("fresh stats = %+v", fresh)
	}

	var ids []string
	for i := 0; i < 2; i++ {
		view, err := gs.CreateGame(ctx, "alice", CreateGameRequest{Difficulty: "easy"})
		if err != nil {
			t.Fatalf("CreateGame: %v", err)
		}
		if _, err := gs.Resign(ctx, view.ID, "alice"); err != nil {
			t.Fatalf("Resign: %v", err)
		}
		ids = append(ids, view.ID)
	}

	second, err := repo.GetGame(ctx, ids[1])
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if second.Rating != 1160 {
		t.Errorf("second game rating = %d, want 1160 going in", second.Rating)
	}

	stats, err := gs.PlayerStats(ctx, "alice")
	if err != nil {
		t.Fatalf("PlayerStats: %v", err)
	}
	want := model.PlayerStats{PlayerID: "alice", GamesPlayed: 2, Losses: 2, Rating: 1120, BestRating: 1200}
	if diff := cmp.Diff(want, stats, cmpopts.IgnoreFields(model.PlayerStats{}, "UpdatedAt")); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func waitEvicted(t *testing.T, gs *GameService, gameID string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := gs.GetGameState(gameID); errors.Is(err, ErrGameNotFound) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("game %s still live", gameID)
}

func TestFinishedGameIsEvicted(t *testing.T) {
	gm := NewGameManager()
	gs := NewGameService(gm, dao.NewMemoryGameRepository(), Options{RetainFinished: time.Millisecond})
	ctx := context.Background()

	view, err := gs.CreateGame(ctx, "alice", CreateGameRequest{Difficulty: "easy"})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if _, err := gs.Resign(ctx, view.ID, "alice"); err != nil {
		t.Fatalf("Resign: %v", err)
	}
	waitEvicted(t, gs, view.ID)
	if gm.Count() != 0 {
		t.Errorf("Count = %d after eviction", gm.Count())
	}
}

func TestSweepIdleAbandonsStaleGames(t *testing.T) {
	repo := dao.NewMemoryGameRepository()
	gs := NewGameService(NewGameManager(), repo, Options{
		RetainFinished: time.Millisecond,
		IdleTimeout:    time.Minute,
	})
	ctx := context.Background()

	view, err := gs.CreateGame(ctx, "alice", CreateGameRequest{Difficulty: "easy"})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if n := gs.SweepIdle(ctx, time.Now()); n != 0 {
		t.Fatalf("fresh game abandoned (%d)", n)
	}
	if n := gs.SweepIdle(ctx, time.Now().Add(time.Hour)); n != 1 {
		t.Fatalf("SweepIdle = %d, want 1", n)
	}

	record, err := repo.GetGame(ctx, view.ID)
	if err != nil {
		t.Fatalf("abandoned game not stored: %v", err)
	}
	if record.Result != model.ResultAbandoned || record.RatingChange != 0 {
		t.Errorf("record = %s %+d", record.Result, record.RatingChange)
	}
	stats, _ := gs.PlayerStats(ctx, "alice")
	if stats.GamesPlayed != 1 || stats.Rating != model.InitialRating {
		t.Errorf("stats = %+v", stats)
	}

	waitEvicted(t, gs, view.ID)
	if n := gs.SweepIdle(ctx, time.Now().Add(time.Hour)); n != 0 {
		t.Errorf("second sweep = %d", n)
	}
}
