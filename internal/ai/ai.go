// Package ai picks moves for the computer opponent.
package ai

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/benbeisheim/chess-ai-backend/internal/model"
)

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

var ErrUnknownDifficulty = errors.New("unknown difficulty")

// ParseDifficulty accepts easy, medium or hard in any case. Empty means medium.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return Medium, nil
	case Easy, Medium, Hard:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
}

// Rand is the randomness the easy level draws from. *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

type randFunc func(int) int

func (f randFunc) Intn(n int) int { return f(n) }

type ChessAI struct {
	level       int
	rnd         Rand
	eval        Evaluator
	legalFilter bool
}

type Option func(*ChessAI)

// WithRand replaces the global math/rand source.
func WithRand(r Rand) Option {
	return func(c *ChessAI) { c.rnd = r }
}

// WithBranchCap sets how many opponent replies the lookahead expands per ply.
func WithBranchCap(n int) Option {
	return func(c *ChessAI) { c.eval.BranchCap = n }
}

// WithLegalFilter restricts root candidates to moves that do not leave the
// mover's king in check. Lookahead plies stay pseudo-legal.
func WithLegalFilter() Option {
	return func(c *ChessAI) { c.legalFilter = true }
}

// New builds an AI for a difficulty. Easy is level 1, medium level 2, anything
// else level 3.
func New(difficulty Difficulty, opts ...Option) *ChessAI {
	level := 3
	switch difficulty {
	case Easy:
		level = 1
	case Medium:
		level = 2
	}
	c := &ChessAI{
		level: level,
		rnd:   randFunc(rand.Intn),
		eval:  Evaluator{BranchCap: DefaultBranchCap},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ChessAI) Level() int {
	return c.level
}

// Difficulty maps the level back to its name.
func (c *ChessAI) Difficulty() Difficulty {
	switch c.level {
	case 1:
		return Easy
	case 2:
		return Medium
	}
	return Hard
}

// LookaheadDepth is the evaluation depth applied to each candidate's resulting board.
func (c *ChessAI) LookaheadDepth() int {
	return c.level - 1
}

// BestMove chooses a move for color. It returns nil when color has no moves;
// telling checkmate from stalemate is left to the caller.
func (c *ChessAI) BestMove(board *model.Board, color model.Color) *model.Move {
	var candidates []model.Move
	if c.legalFilter {
		candidates = model.LegalMoves(board, color)
	} else {
		candidates = model.MovesForColor(board, color)
	}
	if len(candidates) == 0 {
		return nil
	}

	if c.level == 1 {
		move := candidates[c.rnd.Intn(len(candidates))]
		return &move
	}
	return c.bestByEvaluation(board, candidates, color, c.LookaheadDepth())
}

func (c *ChessAI) bestByEvaluation(board *model.Board, candidates []model.Move, color model.Color, depth int) *model.Move {
	best := 0
	bestScore := math.MinInt
	for i, move := range candidates {
		next := model.MakeMove(board, move)
		if score := c.eval.Evaluate(&next, color, depth); score > bestScore {
			bestScore = score
			best = i
		}
	}
	move := candidates[best]
	return &move
}
