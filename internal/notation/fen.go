// Package notation converts boards to and from FEN using notnil/chess.
package notation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/notnil/chess"

	"github.com/benbeisheim/chess-ai-backend/internal/model"
)

var ErrInvalidFEN = errors.New("invalid FEN")

var toChessPiece = map[model.Piece]chess.Piece{
	{Type: model.King, Color: model.White}:   chess.WhiteKing,
	{Type: model.Queen, Color: model.White}:  chess.WhiteQueen,
	{Type: model.Rook, Color: model.White}:   chess.WhiteRook,
	{Type: model.Bishop, Color: model.White}: chess.WhiteBishop,
	{Type: model.Knight, Color: model.White}: chess.WhiteKnight,
	{Type: model.Pawn, Color: model.White}:   chess.WhitePawn,
	{Type: model.King, Color: model.Black}:   chess.BlackKing,
	{Type: model.Queen, Color: model.Black}:  chess.BlackQueen,
	{Type: model.Rook, Color: model.Black}:   chess.BlackRook,
	{Type: model.Bishop, Color: model.Black}: chess.BlackBishop,
	{Type: model.Knight, Color: model.Black}: chess.BlackKnight,
	{Type: model.Pawn, Color: model.Black}:   chess.BlackPawn,
}

var fromChessPiece = func() map[chess.Piece]model.Piece {
	m := make(map[chess.Piece]model.Piece, len(toChessPiece))
	for p, cp := range toChessPiece {
		m[cp] = p
	}
	return m
}()

// row 0 is rank 8; chess.Square counts from a1.
func toSquare(row, col int) chess.Square {
	return chess.Square((7-row)*8 + col)
}

func fromSquare(sq chess.Square) model.Position {
	return model.Position{Row: 7 - int(sq)/8, Col: int(sq) % 8}
}

// Placement returns the piece-placement field of a FEN.
func Placement(board *model.Board) string {
	squares := make(map[chess.Square]chess.Piece)
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if p := board[row][col]; p != nil {
				squares[toSquare(row, col)] = toChessPiece[*p]
			}
		}
	}
	return chess.NewBoard(squares).String()
}

// Encode writes a full FEN for board with toMove to play. Castling and en
// passant are never set since the engine does not generate them.
func Encode(board *model.Board, toMove model.Color, fullMove int) string {
	side := "w"
	if toMove == model.Black {
		side = "b"
	}
	if fullMove < 1 {
		fullMove = 1
	}
	return fmt.Sprintf("%s %s - - 0 %d", Placement(board), side, fullMove)
}

// Decode parses a FEN into a board and the side to move. A bare placement
// field is accepted and means white to move.
func Decode(fen string) (model.Board, model.Color, error) {
	fen = strings.TrimSpace(fen)
	if fen == "" {
		return model.Board{}, "", fmt.Errorf("%w: empty", ErrInvalidFEN)
	}
	if len(strings.Fields(fen)) == 1 {
		fen += " w - - 0 1"
	}

	opt, err := chess.FEN(fen)
	if err != nil {
		return model.Board{}, "", fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	pos := chess.NewGame(opt).Position()

	var board model.Board
	for sq, cp := range pos.Board().SquareMap() {
		p, ok := fromChessPiece[cp]
		if !ok {
			continue
		}
		at := fromSquare(sq)
		board[at.Row][at.Col] = &p
	}

	toMove := model.White
	if pos.Turn() == chess.Black {
		toMove = model.Black
	}
	return board, toMove, nil
}
