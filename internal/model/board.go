package model

import (
	"strings"
)

type PieceType string

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Opponent returns the other side.
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) Valid() bool {
	return c == White || c == Black
}

type Piece struct {
	Type  PieceType `json:"type"`
	Color Color     `json:"color"`
}

var pieceSymbols = map[Color]map[PieceType]string{
	White: {King: "♔", Queen: "♕", Rook: "♖", Bishop: "♗", Knight: "♘", Pawn: "♙"},
	Black: {King: "♚", Queen: "♛", Rook: "♜", Bishop: "♝", Knight: "♞", Pawn: "♟"},
}

// Symbol returns the unicode glyph for the piece.
func (p Piece) Symbol() string {
	return pieceSymbols[p.Color][p.Type]
}

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

const (
	files = "abcdefgh"
	ranks = "87654321"
)

// Valid reports whether the position lies on the board.
func (p Position) Valid() bool {
	return p.Row >= 0 && p.Row < 8 && p.Col >= 0 && p.Col < 8
}

func (p Position) String() string {
	return PositionToNotation(p.Row, p.Col)
}

// PositionToNotation converts board coordinates to an algebraic square such as "e4".
// Row 0 is rank 8.
func PositionToNotation(row, col int) string {
	if !(Position{Row: row, Col: col}).Valid() {
		return ""
	}
	return string(files[col]) + string(ranks[row])
}

// NotationToPosition parses an algebraic square. The bool is false for anything
// that is not a file a-h followed by a rank 1-8.
func NotationToPosition(notation string) (Position, bool) {
	if len(notation) != 2 {
		return Position{}, false
	}
	col := strings.IndexByte(files, notation[0])
	row := strings.IndexByte(ranks, notation[1])
	if col < 0 || row < 0 {
		return Position{}, false
	}
	return Position{Row: row, Col: col}, true
}

// Board is indexed [row][col]. A nil cell is empty.
type Board [8][8]*Piece

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewBoard returns the standard starting position.
func NewBoard() Board {
	var board Board
	for col := 0; col < 8; col++ {
		board[0][col] = &Piece{Type: backRank[col], Color: Black}
		board[1][col] = &Piece{Type: Pawn, Color: Black}
		board[6][col] = &Piece{Type: Pawn, Color: White}
		board[7][col] = &Piece{Type: backRank[col], Color: White}
	}
	return board
}

// Copy returns a deep copy; no piece pointer is shared with b.
func (b *Board) Copy() Board {
	var out Board
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if p := b[row][col]; p != nil {
				piece := *p
				out[row][col] = &piece
			}
		}
	}
	return out
}

func (b *Board) At(pos Position) *Piece {
	if !pos.Valid() {
		return nil
	}
	return b[pos.Row][pos.Col]
}

// Equal compares cell contents, not pointer identity.
func (b *Board) Equal(other *Board) bool {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p, q := b[row][col], other[row][col]
			if (p == nil) != (q == nil) {
				return false
			}
			if p != nil && *p != *q {
				return false
			}
		}
	}
	return true
}

// Count returns the number of pieces of the given color.
func (b *Board) Count(color Color) int {
	n := 0
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if p := b[row][col]; p != nil && p.Color == color {
				n++
			}
		}
	}
	return n
}

func (b *Board) String() string {
	var sb strings.Builder
	for row := 0; row < 8; row++ {
		sb.WriteByte(ranks[row])
		sb.WriteByte(' ')
		for col := 0; col < 8; col++ {
			if p := b[row][col]; p != nil {
				sb.WriteString(p.Symbol())
			} else {
				sb.WriteByte('.')
			}
			if col < 7 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  a b c d e f g h")
	return sb.String()
}
