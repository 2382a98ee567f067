package model

// LegalMoves filters MovesForColor down to moves that do not leave color's own
// king in check.
func LegalMoves(board *Board, color Color) []Move {
	return filterSelfCheck(board, MovesForColor(board, color))
}

// LegalDestinations returns the legal destinations of the piece on from.
func LegalDestinations(board *Board, from Position) []Position {
	piece := board.At(from)
	if piece == nil {
		return []Position{}
	}
	destinations := []Position{}
	for _, to := range PossibleMoves(board, from, *piece) {
		next := MakeMove(board, Move{From: from, To: to, Piece: *piece})
		if !IsKingInCheck(&next, piece.Color) {
			destinations = append(destinations, to)
		}
	}
	return destinations
}

func filterSelfCheck(board *Board, moves []Move) []Move {
	legal := []Move{}
	for _, move := range moves {
		next := MakeMove(board, move)
		if !IsKingInCheck(&next, move.Piece.Color) {
			legal = append(legal, move)
		}
	}
	return legal
}
