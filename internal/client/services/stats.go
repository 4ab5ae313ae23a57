package services

import (
	"cmp"
	"slices"
	"time"

	"github.com/dmitrijs2005/plaquekeeper/internal/client/models"
)

const (
	recentWindow = 7 * 24 * time.Hour
	recentLimit  = 5
)

// Stats are the dashboard counters.
type Stats struct {
	TotalUsers       int
	TotalPlaques     int
	PlaquesThisMonth int
	// RecentActivity counts plaques created at or after now minus 7 days.
	RecentActivity int
	// Recent holds the newest plaques, newest first.
	Recent []models.Plaque
}

func (s *dataStore) Stats(now time.Time) Stats {
	s.mu.Lock()
	users, plaques := len(s.state.Users), slices.Clone(s.state.Plaques)
	s.mu.Unlock()

	return computeStats(users, plaques, now)
}

func computeStats(users int, plaques []models.Plaque, now time.Time) Stats {
	st := Stats{TotalUsers: users, TotalPlaques: len(plaques)}

	y, m, _ := now.Date()
	since := now.Add(-recentWindow)
	for _, p := range plaques {
		at := p.CreatedAt.In(now.Location())
		if py, pm, _ := at.Date(); py == y && pm == m {
			st.PlaquesThisMonth++
		}
		if !at.Before(since) {
			st.RecentActivity++
		}
	}

	slices.SortStableFunc(plaques, func(a, b models.Plaque) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
	st.Recent = plaques[:min(recentLimit, len(plaques))]
	return st
}
