package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/benbeisheim/chess-ai-backend/internal/ai"
	"github.com/benbeisheim/chess-ai-backend/internal/dao"
	"github.com/benbeisheim/chess-ai-backend/internal/model"
	"github.com/benbeisheim/chess-ai-backend/internal/notation"
)

var (
	ErrInvalidSquare = errors.New("invalid square")
	ErrInvalidColor  = errors.New("invalid color")
	ErrMissingBoard  = errors.New("board or fen is required")
	ErrForbidden     = errors.New("not allowed to access this game")
)

const (
	defaultRetainFinished = 5 * time.Minute
	defaultIdleTimeout    = 30 * time.Minute
)

type Options struct {
	// ThinkTimeout bounds one AI move; past it an easy-level move is played.
	ThinkTimeout time.Duration
	BranchCap    int
	// RetainFinished keeps a finished game in memory so its last state can be read.
	RetainFinished time.Duration
	IdleTimeout    time.Duration
}

// engine is the part of *ai.ChessAI the service drives.
type engine interface {
	BestMove(board *model.Board, color model.Color) *model.Move
	Difficulty() ai.Difficulty
}

type GameService struct {
	gameManager *GameManager
	repo        dao.GameRepository
	opts        Options

	// serializes the read-modify-write of player stats
	statsMu sync.Mutex
}

func NewGameService(gameManager *GameManager, repo dao.GameRepository, opts Options) *GameService {
	if opts.BranchCap < 1 {
		opts.BranchCap = ai.DefaultBranchCap
	}
	if opts.RetainFinished <= 0 {
		opts.RetainFinished = defaultRetainFinished
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = defaultIdleTimeout
	}
	return &GameService{
		gameManager: gameManager,
		repo:        repo,
		opts:        opts,
	}
}

func parseSquare(s string) (model.Position, error) {
	pos, ok := model.NotationToPosition(s)
	if !ok {
		return model.Position{}, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	return pos, nil
}

func parseColor(s string, fallback model.Color) (model.Color, error) {
	if s == "" {
		return fallback, nil
	}
	c := model.Color(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return c, nil
}

func (gs *GameService) newAI(difficulty ai.Difficulty, legalOnly bool) *ai.ChessAI {
	opts := []ai.Option{ai.WithBranchCap(gs.opts.BranchCap)}
	if legalOnly {
		opts = append(opts, ai.WithLegalFilter())
	}
	return ai.New(difficulty, opts...)
}

// think runs engine within the configured budget. The search cannot be
// interrupted, so on timeout its result is dropped and a random move is used.
func (gs *GameService) think(ctx context.Context, engine engine, board model.Board, color model.Color, legalOnly bool) *model.Move {
	if gs.opts.ThinkTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, gs.opts.ThinkTimeout)
		defer cancel()
	}

	result := make(chan *model.Move, 1)
	go func() {
		result <- engine.BestMove(&board, color)
	}()

	select {
	case move := <-result:
		return move
	case <-ctx.Done():
		log.Warnf("%s search for %s exceeded its budget, falling back to a random move", engine.Difficulty(), color)
		return gs.newAI(ai.Easy, legalOnly).BestMove(&board, color)
	}
}

// CreateGameRequest starts a game. Color defaults to white, Public to true.
type CreateGameRequest struct {
	Difficulty string `json:"difficulty"`
	Color      string `json:"color"`
	Public     *bool  `json:"public"`
}

func (gs *GameService) CreateGame(ctx context.Context, playerID string, req CreateGameRequest) (model.GameView, error) {
	d, err := ai.ParseDifficulty(req.Difficulty)
	if err != nil {
		return model.GameView{}, err
	}
	playerColor, err := parseColor(req.Color, model.White)
	if err != nil {
		return model.GameView{}, err
	}

	game := model.NewGame(uuid.New().String(), playerID, playerColor, string(d))
	if req.Public != nil {
		game.Public = *req.Public
	}
	if err := gs.gameManager.AddGame(game); err != nil {
		return model.GameView{}, fmt.Errorf("failed to create game: %w", err)
	}
	log.Infof("game %s created for %s (%s, playing %s)", game.ID, playerID, d, playerColor)

	if err := gs.playEngine(ctx, game); err != nil {
		return model.GameView{}, err
	}
	return game.GetState(), nil
}

func (gs *GameService) GetGameState(gameID string) (model.GameView, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.GameView{}, err
	}
	return game.GetState(), nil
}

// LegalMoves returns the destinations, in algebraic notation, of the piece on square.
func (gs *GameService) LegalMoves(gameID, square string) ([]string, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	from, err := parseSquare(square)
	if err != nil {
		return nil, err
	}
	dests, err := game.LegalDestinations(from)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(dests))
	for _, d := range dests {
		out = append(out, d.String())
	}
	return out, nil
}

// HandleMove applies the player's move and then the computer's reply.
func (gs *GameService) HandleMove(ctx context.Context, gameID, playerID, from, to string) (model.GameView, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.GameView{}, err
	}
	fromPos, err := parseSquare(from)
	if err != nil {
		return model.GameView{}, err
	}
	toPos, err := parseSquare(to)
	if err != nil {
		return model.GameView{}, err
	}

	if _, err := game.MakeMove(playerID, fromPos, toPos); err != nil {
		return model.GameView{}, err
	}
	if game.IsOver() {
		gs.persist(ctx, game)
		return game.GetState(), nil
	}
	if err := gs.playEngine(ctx, game); err != nil {
		return model.GameView{}, err
	}
	return game.GetState(), nil
}

func (gs *GameService) playEngine(ctx context.Context, game *model.Game) error {
	if !game.EngineToMove() {
		return nil
	}
	engine := gs.newAI(ai.Difficulty(game.Difficulty), true)
	move := gs.think(ctx, engine, game.Board(), game.EngineColor(), true)
	if err := game.ApplyEngineMove(move); err != nil {
		return fmt.Errorf("apply engine move: %w", err)
	}
	if game.IsOver() {
		gs.persist(ctx, game)
	}
	return nil
}

func (gs *GameService) Resign(ctx context.Context, gameID, playerID string) (model.GameView, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.GameView{}, err
	}
	if err := game.Resign(playerID); err != nil {
		return model.GameView{}, err
	}
	gs.persist(ctx, game)
	return game.GetState(), nil
}

// persist stores a finished game, folds it into the player's stats and
// schedules the live game for eviction. A storage failure is logged, not
// returned; the game itself already ended.
func (gs *GameService) persist(ctx context.Context, game *model.Game) {
	defer gs.evictLater(game.ID)

	record := BuildRecord(game.GetState(), game.Duration())

	gs.statsMu.Lock()
	defer gs.statsMu.Unlock()

	stats, err := gs.loadStats(ctx, record.PlayerID)
	if err != nil {
		log.Errorf("load stats of %s: %v", record.PlayerID, err)
		return
	}
	record.Rating = stats.Rating

	if err := gs.repo.InsertGame(ctx, record); err != nil {
		log.Errorf("persist game %s: %v", game.ID, err)
		return
	}
	stats.Apply(record.Result, record.RatingChange, record.CompletedAt)
	if err := gs.repo.SavePlayerStats(ctx, stats); err != nil {
		log.Errorf("save stats of %s: %v", record.PlayerID, err)
		return
	}
	log.Infof("game %s stored: %s, rating %d%+d", game.ID, record.Result, record.Rating, record.RatingChange)
}

func (gs *GameService) loadStats(ctx context.Context, playerID string) (model.PlayerStats, error) {
	stats, err := gs.repo.GetPlayerStats(ctx, playerID)
	if errors.Is(err, dao.ErrRecordNotFound) {
		return model.NewPlayerStats(playerID), nil
	}
	return stats, err
}

func (gs *GameService) evictLater(gameID string) {
	time.AfterFunc(gs.opts.RetainFinished, func() {
		gs.gameManager.RemoveGame(gameID)
		log.Debugf("game %s evicted", gameID)
	})
}

// SweepIdle abandons every unfinished game that has had no move and no socket
// since now minus the idle timeout. It returns how many games it abandoned.
func (gs *GameService) SweepIdle(ctx context.Context, now time.Time) int {
	cutoff := now.Add(-gs.opts.IdleTimeout)
	abandoned := 0
	for _, game := range gs.gameManager.Games() {
		if game.IsOver() || game.Connected() || game.LastActivity().After(cutoff) {
			continue
		}
		if err := game.Abandon(); err != nil {
			continue
		}
		gs.persist(ctx, game)
		abandoned++
	}
	if abandoned > 0 {
		log.Infof("abandoned %d idle games, %d live", abandoned, gs.gameManager.Count())
	}
	return abandoned
}

// Run sweeps idle games every interval until ctx is done.
func (gs *GameService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			gs.SweepIdle(ctx, now)
		}
	}
}

// PlayerStats returns the player's tally, starting values when nothing is stored yet.
func (gs *GameService) PlayerStats(ctx context.Context, playerID string) (model.PlayerStats, error) {
	return gs.loadStats(ctx, playerID)
}

// BuildRecord turns a finished game view into its stored form.
func BuildRecord(view model.GameView, duration time.Duration) model.GameRecord {
	result := model.ResultAbandoned
	if view.Result != nil {
		result = *view.Result
	}
	completed := time.Now()
	if view.CompletedAt != nil {
		completed = *view.CompletedAt
	}
	fullMove := len(view.State.MoveHistory)/2 + 1

	return model.GameRecord{
		ID:              view.ID,
		PlayerID:        view.PlayerID,
		Difficulty:      view.Difficulty,
		PlayerColor:     view.PlayerColor,
		Result:          result,
		Reason:          view.Reason,
		Moves:           view.State.MoveHistory,
		FinalPosition:   view.State.Board,
		FinalFEN:        notation.Encode(&view.State.Board, view.State.CurrentPlayer, fullMove),
		DurationSeconds: int(math.Round(duration.Seconds())),
		RatingChange:    RatingChange(ai.Difficulty(view.Difficulty), result),
		IsPublic:        view.Public,
		CreatedAt:       view.CreatedAt,
		CompletedAt:     completed,
	}
}

// MoveRequest asks for a computer move on an arbitrary position.
type MoveRequest struct {
	Board      *model.Board `json:"board"`
	FEN        string       `json:"fen"`
	Color      string       `json:"color"`
	Difficulty string       `json:"difficulty"`
	LegalOnly  bool         `json:"legalOnly"`
}

type MoveResponse struct {
	Move    *model.Move `json:"move"`
	InCheck bool        `json:"inCheck"`
	FEN     string      `json:"fen"`
}

// SuggestMove is the stateless form of the engine: position and color in,
// move (or none) out.
func (gs *GameService) SuggestMove(ctx context.Context, req MoveRequest) (MoveResponse, error) {
	d, err := ai.ParseDifficulty(req.Difficulty)
	if err != nil {
		return MoveResponse{}, err
	}

	var board model.Board
	toMove := model.White
	switch {
	case req.FEN != "":
		board, toMove, err = notation.Decode(req.FEN)
		if err != nil {
			return MoveResponse{}, err
		}
	case req.Board != nil:
		board = req.Board.Copy()
	default:
		return MoveResponse{}, ErrMissingBoard
	}

	color, err := parseColor(req.Color, toMove)
	if err != nil {
		return MoveResponse{}, err
	}

	move := gs.think(ctx, gs.newAI(d, req.LegalOnly), board, color, req.LegalOnly)
	return MoveResponse{
		Move:    move,
		InCheck: model.IsKingInCheck(&board, color),
		FEN:     notation.Encode(&board, color, 1),
	}, nil
}

// NormalizePage clamps paging parameters: pages start at 1, limit defaults to
// 20 and may not exceed 100.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func (gs *GameService) ListGames(ctx context.Context, playerID string, page, limit int) ([]model.GameRecord, error) {
	page, limit = NormalizePage(page, limit)
	return gs.repo.ListPlayerGames(ctx, playerID, page, limit)
}

// GetRecord returns a public record to anyone and a private one only to its owner.
func (gs *GameService) GetRecord(ctx context.Context, id, playerID string) (model.GameRecord, error) {
	record, err := gs.repo.GetGame(ctx, id)
	if err != nil {
		return model.GameRecord{}, err
	}
	if !record.IsPublic && record.PlayerID != playerID {
		return model.GameRecord{}, ErrForbidden
	}
	return record, nil
}

// DeleteRecord removes a record owned by playerID. Stats already counted stay.
func (gs *GameService) DeleteRecord(ctx context.Context, id, playerID string) error {
	record, err := gs.repo.GetGame(ctx, id)
	if err != nil {
		return err
	}
	if record.PlayerID != playerID {
		return ErrForbidden
	}
	return gs.repo.DeleteGame(ctx, id)
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, conn *websocket.Conn) error {
	return gs.gameManager.RegisterConnection(gameID, playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string) {
	gs.gameManager.UnregisterConnection(gameID, playerID)
}
