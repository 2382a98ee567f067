package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"

	"github.com/benbeisheim/chess-ai-backend/internal/ws"
)

var (
	ErrGameOver      = errors.New("game is over")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrNoPiece       = errors.New("no piece at from square")
	ErrIllegalMove   = errors.New("illegal move")
	ErrNotAuthorized = errors.New("not authorized for this game")
	ErrConnected     = errors.New("player already connected")
)

// The connections watching a specific game
type GameConnections struct {
	connections map[string]*websocket.Conn // playerID -> connection
	mu          sync.RWMutex
	writeMu     sync.Mutex // a websocket.Conn allows one writer at a time
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]*websocket.Conn),
	}
}

// Game is one human-vs-computer session. The computer's moves are chosen
// outside this package and handed in through ApplyEngineMove.
type Game struct {
	ID          string
	PlayerID    string
	PlayerColor Color
	Difficulty  string
	// Public records can be read by any player once the game is stored.
	Public bool

	mu           sync.Mutex
	state        GameState
	result       *Result
	reason       string
	createdAt    time.Time
	completedAt  time.Time
	lastActivity time.Time
	connections  *GameConnections
	whiteClock   *Clock
	blackClock   *Clock
}

// GameView is the client-facing snapshot of a game.
type GameView struct {
	ID              string     `json:"id"`
	PlayerID        string     `json:"playerId"`
	PlayerColor     Color      `json:"playerColor"`
	Difficulty      string     `json:"difficulty"`
	Public          bool       `json:"public"`
	State           GameState  `json:"state"`
	LastMove        *Move      `json:"lastMove"`
	Result          *Result    `json:"result"`
	Reason          string     `json:"reason,omitempty"`
	WhiteThinkingMs int64      `json:"whiteThinkingMs"`
	BlackThinkingMs int64      `json:"blackThinkingMs"`
	CreatedAt       time.Time  `json:"createdAt"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
}

func NewGame(id, playerID string, playerColor Color, difficulty string) *Game {
	g := &Game{
		ID:          id,
		PlayerID:    playerID,
		PlayerColor: playerColor,
		Difficulty:  difficulty,
		Public:      true,
		state:       NewGameState(),
		createdAt:   time.Now(),
		connections: NewGameConnections(),
		whiteClock:  NewClock(),
		blackClock:  NewClock(),
	}
	g.lastActivity = g.createdAt
	g.whiteClock.Start()
	return g
}

func (g *Game) EngineColor() Color {
	return g.PlayerColor.Opponent()
}

func (g *Game) GetState() GameView {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.view()
}

func (g *Game) view() GameView {
	state := g.state
	state.Board = g.state.Board.Copy()
	state.MoveHistory = append([]Move(nil), g.state.MoveHistory...)
	if g.state.EnPassantTarget != nil {
		target := *g.state.EnPassantTarget
		state.EnPassantTarget = &target
	}

	v := GameView{
		ID:              g.ID,
		PlayerID:        g.PlayerID,
		PlayerColor:     g.PlayerColor,
		Difficulty:      g.Difficulty,
		Public:          g.Public,
		State:           state,
		Reason:          g.reason,
		WhiteThinkingMs: g.whiteClock.Elapsed().Milliseconds(),
		BlackThinkingMs: g.blackClock.Elapsed().Milliseconds(),
		CreatedAt:       g.createdAt,
	}
	if !g.completedAt.IsZero() {
		completed := g.completedAt
		v.CompletedAt = &completed
	}
	if n := len(state.MoveHistory); n > 0 {
		last := state.MoveHistory[n-1]
		v.LastMove = &last
	}
	if g.result != nil {
		r := *g.result
		v.Result = &r
	}
	return v
}

func (g *Game) IsOver() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.result != nil
}

// EngineToMove reports whether the computer should move now.
func (g *Game) EngineToMove() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.result == nil && g.state.CurrentPlayer == g.EngineColor()
}

// Board returns a copy of the current position.
func (g *Game) Board() Board {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.Board.Copy()
}

// LegalDestinations lists where the piece on from may go, for the side to move.
func (g *Game) LegalDestinations(from Position) ([]Position, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	piece := g.state.Board.At(from)
	if piece == nil {
		return nil, ErrNoPiece
	}
	if piece.Color != g.state.CurrentPlayer || g.result != nil {
		return []Position{}, nil
	}
	return LegalDestinations(&g.state.Board, from), nil
}

// MakeMove validates and applies the human player's move.
func (g *Game) MakeMove(playerID string, from, to Position) (Move, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if playerID != g.PlayerID {
		return Move{}, ErrNotAuthorized
	}
	if g.result != nil {
		return Move{}, ErrGameOver
	}
	if g.state.CurrentPlayer != g.PlayerColor {
		return Move{}, ErrNotYourTurn
	}
	piece := g.state.Board.At(from)
	if piece == nil {
		return Move{}, ErrNoPiece
	}
	if piece.Color != g.PlayerColor {
		return Move{}, fmt.Errorf("%w: %s holds an opposing piece", ErrIllegalMove, from)
	}

	isLegal := false
	for _, dest := range LegalDestinations(&g.state.Board, from) {
		if dest == to {
			isLegal = true
			break
		}
	}
	if !isLegal {
		return Move{}, fmt.Errorf("%w: %s to %s", ErrIllegalMove, from, to)
	}

	move := Move{From: from, To: to, Piece: *piece}
	if captured := g.state.Board.At(to); captured != nil {
		c := *captured
		move.Captured = &c
	}
	g.executeMove(move)
	return move, nil
}

// ApplyEngineMove applies a computer move, or ends the game when move is nil.
func (g *Game) ApplyEngineMove(move *Move) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.result != nil {
		return ErrGameOver
	}
	if g.state.CurrentPlayer != g.EngineColor() {
		return ErrNotYourTurn
	}
	if move == nil {
		g.finishWithoutMoves()
		return nil
	}
	if p := g.state.Board.At(move.From); p == nil || *p != move.Piece {
		return fmt.Errorf("%w: engine move %s does not match the board", ErrIllegalMove, move)
	}
	g.executeMove(*move)
	return nil
}

// Resign ends the game as a loss for the human player.
func (g *Game) Resign(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if playerID != g.PlayerID {
		return ErrNotAuthorized
	}
	if g.result != nil {
		return ErrGameOver
	}
	g.finish(ResultLoss, "resignation")
	go g.broadcastState()
	return nil
}

// Abandon ends an unfinished game without a winner.
func (g *Game) Abandon() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.result != nil {
		return ErrGameOver
	}
	g.finish(ResultAbandoned, "abandoned")
	go g.broadcastState()
	return nil
}

// LastActivity is the time of the latest move or connection change.
func (g *Game) LastActivity() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastActivity
}

func (g *Game) touch() {
	g.mu.Lock()
	g.lastActivity = time.Now()
	g.mu.Unlock()
}

func (g *Game) executeMove(move Move) {
	mover := g.state.CurrentPlayer
	g.clockFor(mover).Stop()

	g.state.Board = MakeMove(&g.state.Board, move)
	g.updateCastlingRights(move)
	g.state.MoveHistory = append(g.state.MoveHistory, move)
	g.state.CurrentPlayer = mover.Opponent()
	g.clockFor(g.state.CurrentPlayer).Start()
	g.lastActivity = time.Now()

	g.updateStatus()
	log.Debugf("game %s: %s played %s", g.ID, mover, move)

	go g.broadcastState()
}

func (g *Game) updateStatus() {
	toMove := g.state.CurrentPlayer
	g.state.IsCheck = IsKingInCheck(&g.state.Board, toMove)
	g.state.IsCheckmate = false
	g.state.IsStalemate = false

	// pseudo-legal engine moves can leave a king en prise
	if _, ok := FindKing(&g.state.Board, toMove); !ok {
		g.finish(g.resultFor(toMove.Opponent()), "king captured")
		return
	}
	if len(LegalMoves(&g.state.Board, toMove)) == 0 {
		g.finishWithoutMoves()
	}
}

func (g *Game) finishWithoutMoves() {
	toMove := g.state.CurrentPlayer
	if IsKingInCheck(&g.state.Board, toMove) {
		g.state.IsCheck = true
		g.state.IsCheckmate = true
		g.finish(g.resultFor(toMove.Opponent()), "checkmate")
		return
	}
	g.state.IsStalemate = true
	g.finish(ResultDraw, "stalemate")
}

// resultFor maps a winning color to the human player's result.
func (g *Game) resultFor(winner Color) Result {
	if winner == g.PlayerColor {
		return ResultWin
	}
	return ResultLoss
}

func (g *Game) finish(result Result, reason string) {
	g.result = &result
	g.reason = reason
	g.completedAt = time.Now()
	g.whiteClock.Stop()
	g.blackClock.Stop()
	log.Infof("game %s finished: %s by %s", g.ID, result, reason)
}

func (g *Game) updateCastlingRights(move Move) {
	for _, sq := range []Position{move.From, move.To} {
		switch sq {
		case Position{Row: 7, Col: 4}:
			g.state.CanCastleKingside.White = false
			g.state.CanCastleQueenside.White = false
		case Position{Row: 7, Col: 7}:
			g.state.CanCastleKingside.White = false
		case Position{Row: 7, Col: 0}:
			g.state.CanCastleQueenside.White = false
		case Position{Row: 0, Col: 4}:
			g.state.CanCastleKingside.Black = false
			g.state.CanCastleQueenside.Black = false
		case Position{Row: 0, Col: 7}:
			g.state.CanCastleKingside.Black = false
		case Position{Row: 0, Col: 0}:
			g.state.CanCastleQueenside.Black = false
		}
	}
}

func (g *Game) clockFor(color Color) *Clock {
	if color == White {
		return g.whiteClock
	}
	return g.blackClock
}

// Duration is the combined thinking time of both sides.
func (g *Game) Duration() time.Duration {
	return g.whiteClock.Elapsed() + g.blackClock.Elapsed()
}

func (g *Game) RegisterConnection(playerID string, conn *websocket.Conn) error {
	if playerID != g.PlayerID {
		return ErrNotAuthorized
	}
	g.connections.mu.Lock()
	if _, exists := g.connections.connections[playerID]; exists {
		// keep the healthy connection, reject the new one
		g.connections.mu.Unlock()
		return ErrConnected
	}
	g.connections.connections[playerID] = conn
	g.connections.mu.Unlock()
	g.touch()
	log.Debugf("game %s: registered connection for %s", g.ID, playerID)

	go g.broadcastState()
	return nil
}

func (g *Game) UnregisterConnection(playerID string) {
	g.connections.mu.Lock()
	_, exists := g.connections.connections[playerID]
	if exists {
		log.Debugf("game %s: unregistering connection for %s", g.ID, playerID)
		delete(g.connections.connections, playerID)
	}
	g.connections.mu.Unlock()

	if exists {
		g.touch()
	}
}

// Connected reports whether any socket is attached to the game.
func (g *Game) Connected() bool {
	g.connections.mu.RLock()
	defer g.connections.mu.RUnlock()
	return len(g.connections.connections) > 0
}

func (g *Game) broadcastState() {
	payload, err := json.Marshal(g.GetState())
	if err != nil {
		log.Errorf("game %s: marshal state: %v", g.ID, err)
		return
	}

	g.connections.mu.RLock()
	active := make(map[string]*websocket.Conn, len(g.connections.connections))
	for playerID, conn := range g.connections.connections {
		active[playerID] = conn
	}
	g.connections.mu.RUnlock()

	g.connections.writeMu.Lock()
	defer g.connections.writeMu.Unlock()
	for playerID, conn := range active {
		if err := conn.WriteJSON(ws.Message{
			Type:    ws.MessageTypeGameState,
			Payload: json.RawMessage(payload),
		}); err != nil {
			log.Warnf("game %s: send state to %s: %v", g.ID, playerID, err)
			g.UnregisterConnection(playerID)
		}
	}
}
