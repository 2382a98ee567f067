package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/benbeisheim/chess-ai-backend/internal/db"
	"github.com/benbeisheim/chess-ai-backend/internal/model"
)

var ErrRecordNotFound = errors.New("game record not found")

const queryTimeout = 2 * time.Second

type GameRepository interface {
	InsertGame(ctx context.Context, record model.GameRecord) error

	GetGame(ctx context.Context, id string) (model.GameRecord, error)

	// ListPlayerGames returns one page of a player's records, newest first.
	// Pages start at 1.
	ListPlayerGames(ctx context.Context, playerID string, page, limit int) ([]model.GameRecord, error)

	DeleteGame(ctx context.Context, id string) error

	// GetPlayerStats returns ErrRecordNotFound for a player with no stored games.
	GetPlayerStats(ctx context.Context, playerID string) (model.PlayerStats, error)

	SavePlayerStats(ctx context.Context, stats model.PlayerStats) error
}

type gameRepository struct {
	dbClient *db.GameDbClient
}

func NewGameRepository(dbClient *db.GameDbClient) GameRepository {
	return &gameRepository{dbClient}
}

func (g *gameRepository) InsertGame(ctx context.Context, record model.GameRecord) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := g.dbClient.GameCollection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("insert game %s: %w", record.ID, err)
	}
	return nil
}

func (g *gameRepository) GetGame(ctx context.Context, id string) (model.GameRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var record model.GameRecord
	err := g.dbClient.GameCollection.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.GameRecord{}, ErrRecordNotFound
	}
	if err != nil {
		return model.GameRecord{}, fmt.Errorf("find game %s: %w", id, err)
	}
	return record, nil
}

func (g *gameRepository) ListPlayerGames(ctx context.Context, playerID string, page, limit int) ([]model.GameRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := g.dbClient.GameCollection.Find(ctx, bson.D{{Key: "player_id", Value: playerID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("list games of %s: %w", playerID, err)
	}

	records := []model.GameRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode games of %s: %w", playerID, err)
	}
	return records, nil
}

func (g *gameRepository) DeleteGame(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := g.dbClient.GameCollection.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete game %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (g *gameRepository) GetPlayerStats(ctx context.Context, playerID string) (model.PlayerStats, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var stats model.PlayerStats
	err := g.dbClient.StatsCollection.FindOne(ctx, bson.D{{Key: "_id", Value: playerID}}).Decode(&stats)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.PlayerStats{}, ErrRecordNotFound
	}
	if err != nil {
		return model.PlayerStats{}, fmt.Errorf("find stats of %s: %w", playerID, err)
	}
	return stats, nil
}

func (g *gameRepository) SavePlayerStats(ctx context.Context, stats model.PlayerStats) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	if _, err := g.dbClient.StatsCollection.ReplaceOne(ctx, bson.D{{Key: "_id", Value: stats.PlayerID}}, stats, opts); err != nil {
		return fmt.Errorf("save stats of %s: %w", stats.PlayerID, err)
	}
	return nil
}
