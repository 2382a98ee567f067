package service

import (
	"github.com/benbeisheim/chess-ai-backend/internal/ai"
	"github.com/benbeisheim/chess-ai-backend/internal/model"
)

const baseRatingChange = 20

// RatingChange is the simplified rating delta for a rated game against the AI.
// Beating a harder opponent earns more; losing to an easier one costs more.
func RatingChange(difficulty ai.Difficulty, result model.Result) int {
	switch result {
	case model.ResultWin:
		switch difficulty {
		case ai.Hard:
			return baseRatingChange * 2
		case ai.Medium:
			return baseRatingChange
		default:
			return baseRatingChange / 2
		}
	case model.ResultLoss:
		switch difficulty {
		case ai.Easy:
			return -baseRatingChange * 2
		case ai.Medium:
			return -baseRatingChange
		default:
			return -baseRatingChange / 2
		}
	}
	return 0
}
