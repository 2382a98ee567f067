package model

import (
	"math"
	"time"
)

type Result string

const (
	ResultWin       Result = "win"
	ResultLoss      Result = "loss"
	ResultDraw      Result = "draw"
	ResultAbandoned Result = "abandoned"
)

// GameRecord is the persisted summary of a finished game. Result is from the
// human player's point of view, Rating the player's rating going into it.
type GameRecord struct {
	ID              string    `json:"id" bson:"_id"`
	PlayerID        string    `json:"playerId" bson:"player_id"`
	Difficulty      string    `json:"difficulty" bson:"difficulty"`
	PlayerColor     Color     `json:"playerColor" bson:"player_color"`
	Result          Result    `json:"result" bson:"result"`
	Reason          string    `json:"reason" bson:"reason"`
	Moves           []Move    `json:"moves" bson:"moves"`
	FinalPosition   Board     `json:"finalPosition" bson:"final_position"`
	FinalFEN        string    `json:"finalFen" bson:"final_fen"`
	DurationSeconds int       `json:"durationSeconds" bson:"duration_seconds"`
	Rating          int       `json:"rating" bson:"rating"`
	RatingChange    int       `json:"ratingChange" bson:"rating_change"`
	IsPublic        bool      `json:"isPublic" bson:"is_public"`
	CreatedAt       time.Time `json:"createdAt" bson:"created_at"`
	CompletedAt     time.Time `json:"completedAt" bson:"completed_at"`
}

const InitialRating = 1200

// PlayerStats is the running tally of a player's finished games.
type PlayerStats struct {
	PlayerID      string    `json:"playerId" bson:"_id"`
	GamesPlayed   int       `json:"gamesPlayed" bson:"games_played"`
	Wins          int       `json:"wins" bson:"wins"`
	Losses        int       `json:"losses" bson:"losses"`
	Draws         int       `json:"draws" bson:"draws"`
	Rating        int       `json:"rating" bson:"rating"`
	BestRating    int       `json:"bestRating" bson:"best_rating"`
	WinStreak     int       `json:"winStreak" bson:"win_streak"`
	BestWinStreak int       `json:"bestWinStreak" bson:"best_win_streak"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updated_at"`
}

func NewPlayerStats(playerID string) PlayerStats {
	return PlayerStats{
		PlayerID:   playerID,
		Rating:     InitialRating,
		BestRating: InitialRating,
	}
}

// Apply folds one finished game into the tally. The rating never drops below
// zero. Abandoned games count as played but leave the streak alone.
func (s *PlayerStats) Apply(result Result, ratingChange int, at time.Time) {
	s.GamesPlayed++
	s.Rating += ratingChange
	if s.Rating < 0 {
		s.Rating = 0
	}
	if s.Rating > s.BestRating {
		s.BestRating = s.Rating
	}

	switch result {
	case ResultWin:
		s.Wins++
		s.WinStreak++
		if s.WinStreak > s.BestWinStreak {
			s.BestWinStreak = s.WinStreak
		}
	case ResultLoss:
		s.Losses++
		s.WinStreak = 0
	case ResultDraw:
		s.Draws++
		s.WinStreak = 0
	}
	s.UpdatedAt = at
}

// WinRate is the percentage of games won, rounded to one decimal.
func (s PlayerStats) WinRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return math.Round(float64(s.Wins)/float64(s.GamesPlayed)*1000) / 10
}
