package leaderboard

import (
	"bytes"
	"context"
	"sort"

	"agroshare-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entry is one leaderboard row. Positions are 1-based and recomputed on
// every call; nothing here is persisted or cached.
type Entry struct {
	FarmerID    uuid.UUID `json:"farmer_id"`
	Region      string    `json:"region"`
	TotalRating int       `json:"total_rating"`
	Band        string    `json:"band"`
	Position    int       `json:"position"`
	IsYou       bool      `json:"is_you,omitempty"`
}

// Service builds ranked read views over the persisted ratings.
type Service struct {
	DB *gorm.DB
}

// Query narrows and annotates a leaderboard read.
type Query struct {
	Region        string
	Limit         int
	CurrentUserID uuid.UUID
}

// Result is the leaderboard page plus the caller's own entry when it falls
// outside the page window.
type Result struct {
	Entries []Entry `json:"entries"`
	You     *Entry  `json:"you,omitempty"`
	Total   int     `json:"total"`
}

// Rank orders entries by rating descending, ties broken by farmer id
// ascending, and assigns 1-based positions. Pure and deterministic.
func Rank(entries []Entry) []Entry {
	ranked := make([]Entry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].TotalRating != ranked[j].TotalRating {
			return ranked[i].TotalRating > ranked[j].TotalRating
		}
		return bytes.Compare(ranked[i].FarmerID[:], ranked[j].FarmerID[:]) < 0
	})
	for i := range ranked {
		ranked[i].Position = i + 1
	}
	return ranked
}

// FilterByRegion keeps entries whose region matches exactly. Empty or "all"
// means no filtering.
func FilterByRegion(entries []Entry, region string) []Entry {
	if region == "" || region == "all" {
		return entries
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Region == region {
			out = append(out, e)
		}
	}
	return out
}

// Leaderboard loads all ratings and produces the ranked view for the query.
func (s *Service) Leaderboard(ctx context.Context, q Query) (*Result, error) {
	var ratings []models.FarmerRating
	if err := s.DB.WithContext(ctx).Find(&ratings).Error; err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(ratings))
	for _, r := range ratings {
		entries = append(entries, Entry{
			FarmerID:    r.FarmerID,
			Region:      r.Region,
			TotalRating: r.TotalRating,
			Band:        r.Band,
		})
	}
	ranked := Rank(FilterByRegion(entries, q.Region))

	result := &Result{Total: len(ranked)}
	var you *Entry
	if q.CurrentUserID != uuid.Nil {
		for i := range ranked {
			if ranked[i].FarmerID == q.CurrentUserID {
				ranked[i].IsYou = true
				copied := ranked[i]
				you = &copied
				break
			}
		}
	}

	if q.Limit > 0 && q.Limit < len(ranked) {
		ranked = ranked[:q.Limit]
	}
	result.Entries = ranked

	// Keep the caller visible even when they fall outside the page.
	if you != nil && you.Position > len(ranked) {
		result.You = you
	}
	return result, nil
}
