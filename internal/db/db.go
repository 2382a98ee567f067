package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/benbeisheim/chess-ai-backend/internal/config"
)

const connectTimeout = 10 * time.Second

type GameDbClient struct {
	client          *mongo.Client
	GameCollection  *mongo.Collection
	StatsCollection *mongo.Collection
}

func (r *GameDbClient) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func NewDbClient(ctx context.Context, cfg *config.Configuration) (*GameDbClient, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	clientOpts := options.Client().ApplyURI(cfg.Database.URI)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	database := client.Database(cfg.Database.DatabaseName)
	return &GameDbClient{
		client:          client,
		GameCollection:  database.Collection(cfg.Database.Collection),
		StatsCollection: database.Collection(cfg.Database.StatsCollection),
	}, nil
}
