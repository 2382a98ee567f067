package dao

import (
	"context"
	"sort"
	"sync"

	"github.com/benbeisheim/chess-ai-backend/internal/model"
)

// MemoryGameRepository keeps records in process. It backs the server when no
// MONGO_URI is configured.
type MemoryGameRepository struct {
	mu      sync.RWMutex
	records map[string]model.GameRecord
	stats   map[string]model.PlayerStats
}

func NewMemoryGameRepository() *MemoryGameRepository {
	return &MemoryGameRepository{
		records: make(map[string]model.GameRecord),
		stats:   make(map[string]model.PlayerStats),
	}
}

func (m *MemoryGameRepository) InsertGame(_ context.Context, record model.GameRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.ID] = record
	return nil
}

func (m *MemoryGameRepository) GetGame(_ context.Context, id string) (model.GameRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.records[id]
	if !ok {
		return model.GameRecord{}, ErrRecordNotFound
	}
	return record, nil
}

func (m *MemoryGameRepository) ListPlayerGames(_ context.Context, playerID string, page, limit int) ([]model.GameRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var mine []model.GameRecord
	for _, r := range m.records {
		if r.PlayerID == playerID {
			mine = append(mine, r)
		}
	}
	sort.Slice(mine, func(i, j int) bool {
		return mine[i].CreatedAt.After(mine[j].CreatedAt)
	})

	start := (page - 1) * limit
	if start >= len(mine) {
		return []model.GameRecord{}, nil
	}
	end := start + limit
	if end > len(mine) {
		end = len(mine)
	}
	return mine[start:end], nil
}

func (m *MemoryGameRepository) DeleteGame(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return ErrRecordNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *MemoryGameRepository) GetPlayerStats(_ context.Context, playerID string) (model.PlayerStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats, ok := m.stats[playerID]
	if !ok {
		return model.PlayerStats{}, ErrRecordNotFound
	}
	return stats, nil
}

func (m *MemoryGameRepository) SavePlayerStats(_ context.Context, stats model.PlayerStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats[stats.PlayerID] = stats
	return nil
}
