package model

import "fmt"

// Move is a proposal; applying it is done by MakeMove.
// Promotion, Castling and EnPassant are carried for callers and ignored by the engine.
type Move struct {
	From      Position   `json:"from"`
	To        Position   `json:"to"`
	Piece     Piece      `json:"piece"`
	Captured  *Piece     `json:"captured,omitempty"`
	Promotion *PieceType `json:"promotion,omitempty"`
	Castling  bool       `json:"castling,omitempty"`
	EnPassant bool       `json:"enPassant,omitempty"`
}

func (m Move) String() string {
	sep := "-"
	if m.Captured != nil {
		sep = "x"
	}
	return fmt.Sprintf("%s%s%s%s", m.Piece.notationPrefix(), m.From, sep, m.To)
}

func (p Piece) notationPrefix() string {
	switch p.Type {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	}
	return ""
}

type CastlingRights struct {
	White bool `json:"white"`
	Black bool `json:"black"`
}

// GameState is owned by the caller; the engine only reads Board and CurrentPlayer.
type GameState struct {
	Board              Board          `json:"board"`
	CurrentPlayer      Color          `json:"currentPlayer"`
	MoveHistory        []Move         `json:"moveHistory"`
	IsCheck            bool           `json:"isCheck"`
	IsCheckmate        bool           `json:"isCheckmate"`
	IsStalemate        bool           `json:"isStalemate"`
	CanCastleKingside  CastlingRights `json:"canCastleKingside"`
	CanCastleQueenside CastlingRights `json:"canCastleQueenside"`
	EnPassantTarget    *Position      `json:"enPassantTarget"`
}

func NewGameState() GameState {
	return GameState{
		Board:              NewBoard(),
		CurrentPlayer:      White,
		MoveHistory:        make([]Move, 0),
		CanCastleKingside:  CastlingRights{White: true, Black: true},
		CanCastleQueenside: CastlingRights{White: true, Black: true},
	}
}
