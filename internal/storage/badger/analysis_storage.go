package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/verdict/internal/interfaces"
	"github.com/ternarybob/verdict/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// AnalysisStorage implements the AnalysisStorage interface for Badger
type AnalysisStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAnalysisStorage creates a new AnalysisStorage instance
func NewAnalysisStorage(db *BadgerDB, logger arbor.ILogger) interfaces.AnalysisStorage {
	return &AnalysisStorage{
		db:     db,
		logger: logger,
	}
}

func (s *AnalysisStorage) SaveAnalysis(ctx context.Context, analysis *models.Analysis) error {
	if analysis.ID == "" {
		return fmt.Errorf("analysis ID is required")
	}

	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = time.Now().UTC()
	}

	if err := s.db.Store().Upsert(analysis.ID, analysis); err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

func (s *AnalysisStorage) GetAnalysis(ctx context.Context, id string) (*models.Analysis, error) {
	var analysis models.Analysis
	if err := s.db.Store().Get(id, &analysis); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, interfaces.ErrAnalysisNotFound
		}
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	return &analysis, nil
}

// ListRecent returns up to limit analyses, most recent first.
func (s *AnalysisStorage) ListRecent(ctx context.Context, limit int) ([]*models.Analysis, error) {
	var analyses []models.Analysis
	query := badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := s.db.Store().Find(&analyses, query); err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}

	result := make([]*models.Analysis, len(analyses))
	for i := range analyses {
		result[i] = &analyses[i]
	}
	return result, nil
}
