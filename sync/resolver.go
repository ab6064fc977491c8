// ABOUTME: Candidate pool construction and best-match selection
// ABOUTME: Bounded per-criterion searches unioned by remote id, scored, thresholded
package sync

import (
	"database/sql"
	"fmt"

	"syncmesh/db"
	"syncmesh/models"
)

// MatchThreshold is the minimum score a candidate must reach to be accepted
// as a cross-system match.
const MatchThreshold = 60

// SearchLimit bounds each per-criterion text search.
const SearchLimit = 10

// CandidateScanLimit bounds the full-scan fallback used when no criterion
// search returns anything. This guarantees coverage for small datasets at the
// cost of a hard ceiling: records beyond the first CandidateScanLimit rows of
// an entity type are never considered by the fallback.
const CandidateScanLimit = 50

// Resolver finds the best-scoring existing record for a set of match
// criteria. Zero-value limits fall back to the package constants.
type Resolver struct {
	DB          *sql.DB
	Threshold   int
	SearchLimit int
	ScanLimit   int
	// ExcludeSource drops candidates mirrored from that source system.
	// Cross-system linking sets it so a record never matches its own mirror.
	ExcludeSource string
}

// NewResolver creates a resolver with the default bounds.
func NewResolver(database *sql.DB) *Resolver {
	return &Resolver{
		DB:          database,
		Threshold:   MatchThreshold,
		SearchLimit: SearchLimit,
		ScanLimit:   CandidateScanLimit,
	}
}

// Resolve builds a deduplicated candidate pool from bounded searches over
// each non-empty criterion, scores every candidate, and returns the
// maximum-scoring one at or above the threshold. Among equal scores the
// first candidate encountered wins; pool order follows search discovery
// order, which is not guaranteed stable across calls, so the winner among
// ties is deliberately unspecified. Returns nil when nothing reaches the
// threshold.
func (r *Resolver) Resolve(entityType models.EntityType, criteria models.MatchCriteria) (*models.MatchCandidate, error) {
	if criteria.Empty() {
		return nil, nil
	}

	pool, err := r.buildPool(entityType, criteria)
	if err != nil {
		return nil, err
	}

	var best *models.MatchCandidate
	for i := range pool {
		score := ScoreCandidate(&pool[i], criteria)
		if score.Score < r.threshold() {
			continue
		}
		if best == nil || score.Score > best.Score {
			best = &models.MatchCandidate{Record: &pool[i], MatchScore: score}
		}
	}

	return best, nil
}

// buildPool unions bounded per-criterion searches by remote id, preserving
// discovery order. An empty pool falls back to a bounded scan of the entity
// type so small datasets still get coverage.
func (r *Resolver) buildPool(entityType models.EntityType, criteria models.MatchCriteria) ([]models.CanonicalRecord, error) {
	terms := make([]string, 0, 4)
	if criteria.CompanyName != "" {
		terms = append(terms, criteria.CompanyName)
	}
	if criteria.Email != "" {
		terms = append(terms, criteria.Email)
	}
	if criteria.Domain != "" {
		terms = append(terms, criteria.Domain)
	}
	if criteria.FirstName != "" || criteria.LastName != "" {
		name := criteria.FirstName
		if criteria.LastName != "" {
			if name != "" {
				name += " "
			}
			name += criteria.LastName
		}
		terms = append(terms, name)
	}

	seen := make(map[string]bool)
	var pool []models.CanonicalRecord

	for _, term := range terms {
		results, err := db.SearchRecords(r.DB, entityType, term, r.searchLimit())
		if err != nil {
			return nil, fmt.Errorf("candidate search failed: %w", err)
		}
		for _, rec := range results {
			if seen[rec.RemoteID] {
				continue
			}
			if r.ExcludeSource != "" && rec.Source == r.ExcludeSource {
				continue
			}
			seen[rec.RemoteID] = true
			pool = append(pool, rec)
		}
	}

	if len(pool) == 0 {
		fallback, err := db.ListRecords(r.DB, entityType, r.scanLimit())
		if err != nil {
			return nil, fmt.Errorf("candidate scan failed: %w", err)
		}
		if r.ExcludeSource == "" {
			return fallback, nil
		}
		for _, rec := range fallback {
			if rec.Source != r.ExcludeSource {
				pool = append(pool, rec)
			}
		}
	}

	return pool, nil
}

func (r *Resolver) threshold() int {
	if r.Threshold > 0 {
		return r.Threshold
	}
	return MatchThreshold
}

func (r *Resolver) searchLimit() int {
	if r.SearchLimit > 0 {
		return r.SearchLimit
	}
	return SearchLimit
}

func (r *Resolver) scanLimit() int {
	if r.ScanLimit > 0 {
		return r.ScanLimit
	}
	return CandidateScanLimit
}
