package resultcache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/ternarybob/verdict/internal/models"
)

// Fingerprint derives the deterministic cache key for a request. The key
// covers query, asset symbol, timeframe, and conversation identity so that
// two logically identical requests collide and any divergence in those
// fields does not.
func Fingerprint(req *models.AnalysisRequest, contextAssetSymbol string) string {
	parts := []string{req.Query, req.AssetSymbol}

	if req.Timeframe != "" {
		parts = append(parts, string(req.Timeframe))
	}

	if req.SessionID != "" {
		parts = append(parts, "session:"+req.SessionID)
	}
	if req.ConversationID != "" {
		parts = append(parts, "conversation:"+req.ConversationID)
	}
	if contextAssetSymbol != "" && contextAssetSymbol != req.AssetSymbol {
		parts = append(parts, "ctx_asset:"+contextAssetSymbol)
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(sum[:])
}
