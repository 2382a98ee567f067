package model

var (
	knightDirs = []Position{{Row: -2, Col: -1}, {Row: -2, Col: 1}, {Row: -1, Col: -2}, {Row: -1, Col: 2}, {Row: 1, Col: -2}, {Row: 1, Col: 2}, {Row: 2, Col: -1}, {Row: 2, Col: 1}}
	bishopDirs = []Position{{Row: -1, Col: -1}, {Row: -1, Col: 1}, {Row: 1, Col: -1}, {Row: 1, Col: 1}}
	rookDirs   = []Position{{Row: -1, Col: 0}, {Row: 1, Col: 0}, {Row: 0, Col: -1}, {Row: 0, Col: 1}}
	kingDirs   = []Position{{Row: -1, Col: -1}, {Row: -1, Col: 0}, {Row: -1, Col: 1}, {Row: 0, Col: -1}, {Row: 0, Col: 1}, {Row: 1, Col: -1}, {Row: 1, Col: 0}, {Row: 1, Col: 1}}
)

// PossibleMoves returns the pseudo-legal destinations of piece standing on from.
// Moves that leave the mover's own king in check are included.
func PossibleMoves(board *Board, from Position, piece Piece) []Position {
	switch piece.Type {
	case Pawn:
		return pawnMoves(board, from, piece)
	case Knight:
		return stepMoves(board, from, piece, knightDirs)
	case Bishop:
		return slidingMoves(board, from, piece, bishopDirs)
	case Rook:
		return slidingMoves(board, from, piece, rookDirs)
	case Queen:
		return slidingMoves(board, from, piece, kingDirs)
	case King:
		return stepMoves(board, from, piece, kingDirs)
	default:
		return []Position{}
	}
}

func pawnMoves(board *Board, from Position, piece Piece) []Position {
	moves := []Position{}
	dir, startRow := -1, 6
	if piece.Color == Black {
		dir, startRow = 1, 1
	}

	forward := Position{Row: from.Row + dir, Col: from.Col}
	if forward.Valid() && board.At(forward) == nil {
		moves = append(moves, forward)
		// double step only through an empty square
		if from.Row == startRow {
			double := Position{Row: from.Row + 2*dir, Col: from.Col}
			if double.Valid() && board.At(double) == nil {
				moves = append(moves, double)
			}
		}
	}

	for _, dc := range []int{-1, 1} {
		target := Position{Row: from.Row + dir, Col: from.Col + dc}
		if !target.Valid() {
			continue
		}
		if p := board.At(target); p != nil && p.Color != piece.Color {
			moves = append(moves, target)
		}
	}
	return moves
}

func stepMoves(board *Board, from Position, piece Piece, dirs []Position) []Position {
	moves := []Position{}
	for _, dir := range dirs {
		target := Position{Row: from.Row + dir.Row, Col: from.Col + dir.Col}
		if !target.Valid() {
			continue
		}
		if p := board.At(target); p == nil || p.Color != piece.Color {
			moves = append(moves, target)
		}
	}
	return moves
}

func slidingMoves(board *Board, from Position, piece Piece, dirs []Position) []Position {
	moves := []Position{}
	for _, dir := range dirs {
		target := Position{Row: from.Row + dir.Row, Col: from.Col + dir.Col}
		for target.Valid() {
			p := board.At(target)
			if p == nil {
				moves = append(moves, target)
			} else {
				if p.Color != piece.Color {
					moves = append(moves, target)
				}
				break
			}
			target = Position{Row: target.Row + dir.Row, Col: target.Col + dir.Col}
		}
	}
	return moves
}

// FindKing returns the first king of color in row-major order.
func FindKing(board *Board, color Color) (Position, bool) {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if p := board[row][col]; p != nil && p.Type == King && p.Color == color {
				return Position{Row: row, Col: col}, true
			}
		}
	}
	return Position{}, false
}

// IsSquareAttacked reports whether any piece of attacker has square among its
// pseudo-legal destinations.
func IsSquareAttacked(board *Board, square Position, attacker Color) bool {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p := board[row][col]
			if p == nil || p.Color != attacker {
				continue
			}
			for _, to := range PossibleMoves(board, Position{Row: row, Col: col}, *p) {
				if to == square {
					return true
				}
			}
		}
	}
	return false
}

// IsKingInCheck reports whether color's king is attacked. A board without that
// king is never in check.
func IsKingInCheck(board *Board, color Color) bool {
	kingPos, ok := FindKing(board, color)
	if !ok {
		return false
	}
	return IsSquareAttacked(board, kingPos, color.Opponent())
}

// MovesForColor enumerates every pseudo-legal move of color, scanning the board
// row by row. Captured is set when the destination is occupied.
func MovesForColor(board *Board, color Color) []Move {
	moves := []Move{}
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p := board[row][col]
			if p == nil || p.Color != color {
				continue
			}
			from := Position{Row: row, Col: col}
			for _, to := range PossibleMoves(board, from, *p) {
				move := Move{From: from, To: to, Piece: *p}
				if captured := board.At(to); captured != nil {
					c := *captured
					move.Captured = &c
				}
				moves = append(moves, move)
			}
		}
	}
	return moves
}
