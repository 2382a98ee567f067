package model

import "fmt"

// MakeMove returns a new board with move.Piece on move.To and move.From cleared.
// The move is not validated against the board; it must come from the generator.
// An empty origin is a caller bug and panics.
func MakeMove(board *Board, move Move) Board {
	if board.At(move.From) == nil {
		panic(fmt.Sprintf("model: MakeMove from empty square %s", move.From))
	}
	next := board.Copy()
	piece := move.Piece
	next[move.To.Row][move.To.Col] = &piece
	next[move.From.Row][move.From.Col] = nil
	return next
}
