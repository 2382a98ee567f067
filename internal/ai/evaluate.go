package ai

import (
	"math"

	"github.com/benbeisheim/chess-ai-backend/internal/model"
)

var pieceValues = map[model.PieceType]int{
	model.Pawn:   100,
	model.Knight: 320,
	model.Bishop: 330,
	model.Rook:   500,
	model.Queen:  900,
	model.King:   20000,
}

const checkBonus = 50

// DefaultBranchCap is how many opponent replies the lookahead examines per ply.
const DefaultBranchCap = 5

// Evaluator scores boards from one side's point of view.
type Evaluator struct {
	// BranchCap bounds the opponent replies expanded per ply, taken in board
	// scan order. Values below 1 mean DefaultBranchCap.
	BranchCap int
}

// Material sums piece values, positive for color and negative for the opponent.
func Material(board *model.Board, color model.Color) int {
	score := 0
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p := board[row][col]
			if p == nil {
				continue
			}
			if p.Color == color {
				score += pieceValues[p.Type]
			} else {
				score -= pieceValues[p.Type]
			}
		}
	}
	return score
}

// Static is material plus the check adjustment, with no lookahead.
func Static(board *model.Board, color model.Color) int {
	score := Material(board, color)
	if model.IsKingInCheck(board, color) {
		score -= checkBonus
	}
	if model.IsKingInCheck(board, color.Opponent()) {
		score += checkBonus
	}
	return score
}

// Evaluate scores board for color. With depth > 0 the score is the minimum over
// the first BranchCap opponent replies, each evaluated at depth-1 from color's
// side. The opponent is the one to move at every ply.
func (e Evaluator) Evaluate(board *model.Board, color model.Color, depth int) int {
	score := Static(board, color)
	if depth <= 0 {
		return score
	}

	replies := model.MovesForColor(board, color.Opponent())
	if len(replies) == 0 {
		return score
	}
	if limit := e.branchCap(); len(replies) > limit {
		replies = replies[:limit]
	}

	worst := math.MaxInt
	for _, reply := range replies {
		next := model.MakeMove(board, reply)
		if s := e.Evaluate(&next, color, depth-1); s < worst {
			worst = s
		}
	}
	return worst
}

func (e Evaluator) branchCap() int {
	if e.BranchCap < 1 {
		return DefaultBranchCap
	}
	return e.BranchCap
}
