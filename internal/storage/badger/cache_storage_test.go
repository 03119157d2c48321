package badger

import (
	"context"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/verdict/internal/interfaces"
	"github.com/ternarybob/verdict/internal/marketdata"
	"github.com/ternarybob/verdict/internal/models"
)

func TestCacheStorage_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	storage := NewCacheStorage(db, arbor.NewLogger())
	ctx := context.Background()

	analysis := &models.Analysis{
		ID:          "analysis_1",
		AssetSymbol: "BTC",
		Synthesis: models.Synthesis{
			Outlook:       models.OutlookBullish,
			TradingAction: models.ActionBuy,
		},
	}
	if err := storage.SetCached(ctx, "key-1", analysis, 30*time.Minute); err != nil {
		t.Fatalf("Failed to set cache entry: %v", err)
	}

	got, err := storage.GetCached(ctx, "key-1")
	if err != nil {
		t.Fatalf("Failed to get cache entry: %v", err)
	}
	if got.AssetSymbol != "BTC" || got.Synthesis.Outlook != models.OutlookBullish {
		t.Errorf("Unexpected cached analysis: %+v", got)
	}
}

// Specialists attach their raw data (indicator slices, quote structs) to
// DataSources as interface values; storage must round-trip them.
func TestCacheStorage_StoresSpecialistDataPayloads(t *testing.T) {
	db := newTestDB(t)
	storage := NewCacheStorage(db, arbor.NewLogger())
	ctx := context.Background()

	analysis := &models.Analysis{
		ID:          "analysis_data",
		AssetSymbol: "BTC",
		Macro: models.SpecialistResult{
			AgentName:  models.AgentMacro,
			Confidence: 0.8,
			DataSources: map[string]interface{}{
				"economic": []marketdata.EconomicIndicator{
					{SeriesID: "FEDFUNDS", Name: "Federal Funds Rate", Value: 5.25, Unit: "%"},
				},
				"news": []marketdata.NewsArticle{
					{Title: "Rates hold steady", Source: "example"},
				},
			},
		},
		Technical: models.SpecialistResult{
			AgentName:  models.AgentTechnical,
			Confidence: 0.7,
			DataSources: map[string]interface{}{
				"quote": &marketdata.Quote{Symbol: "BTC", Volume: 1200, Change24hPct: 2.5},
			},
		},
	}
	if err := storage.SetCached(ctx, "key-data", analysis, 30*time.Minute); err != nil {
		t.Fatalf("Failed to set cache entry with data payloads: %v", err)
	}

	got, err := storage.GetCached(ctx, "key-data")
	if err != nil {
		t.Fatalf("Failed to get cache entry with data payloads: %v", err)
	}
	if got.Macro.Confidence != 0.8 || got.Technical.Confidence != 0.7 {
		t.Errorf("Unexpected specialist confidences: %+v", got)
	}
	if _, ok := got.Macro.DataSources["economic"]; !ok {
		t.Error("Expected macro economic data to survive the round trip")
	}
	if _, ok := got.Technical.DataSources["quote"]; !ok {
		t.Error("Expected technical quote data to survive the round trip")
	}

	saver := NewAnalysisStorage(db, arbor.NewLogger())
	if err := saver.SaveAnalysis(ctx, analysis); err != nil {
		t.Fatalf("Failed to save analysis with data payloads: %v", err)
	}
	stored, err := saver.GetAnalysis(ctx, analysis.ID)
	if err != nil {
		t.Fatalf("Failed to get saved analysis: %v", err)
	}
	if _, ok := stored.Macro.DataSources["news"]; !ok {
		t.Error("Expected macro news data to survive persistence")
	}
}

func TestCacheStorage_MissAndExpiry(t *testing.T) {
	db := newTestDB(t)
	storage := NewCacheStorage(db, arbor.NewLogger())
	ctx := context.Background()

	if _, err := storage.GetCached(ctx, "absent"); err != interfaces.ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss for absent key, got %v", err)
	}

	if err := storage.SetCached(ctx, "stale", &models.Analysis{ID: "a"}, -time.Second); err != nil {
		t.Fatal(err)
	}
	if _, err := storage.GetCached(ctx, "stale"); err != interfaces.ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss for expired key, got %v", err)
	}
}

func TestAnalysisStorage_ListRecent(t *testing.T) {
	db := newTestDB(t)
	storage := NewAnalysisStorage(db, arbor.NewLogger())
	ctx := context.Background()

	base := time.Now().UTC()
	for i, id := range []string{"a1", "a2", "a3"} {
		analysis := &models.Analysis{
			ID:        id,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := storage.SaveAnalysis(ctx, analysis); err != nil {
			t.Fatalf("Failed to save analysis %s: %v", id, err)
		}
	}

	recent, err := storage.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("Failed to list analyses: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Expected 2 analyses, got %d", len(recent))
	}
	if recent[0].ID != "a3" || recent[1].ID != "a2" {
		t.Errorf("Expected most recent first, got %s, %s", recent[0].ID, recent[1].ID)
	}
}
