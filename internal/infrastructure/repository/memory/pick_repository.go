package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/thecommish/pickem/internal/domain/pick"
)

// PickRepository is the in-memory pick store, used when no database is
// configured and as the test double. Iteration order is deterministic:
// ascending user id, then ascending week.
type PickRepository struct {
	mu     sync.RWMutex
	byUser map[string]map[int]pick.Pick
}

func NewPickRepository() *PickRepository {
	return &PickRepository{byUser: make(map[string]map[int]pick.Pick)}
}

func (r *PickRepository) Get(_ context.Context, userID string, week int) (pick.Pick, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byUser[userID][week]
	return p, ok, nil
}

func (r *PickRepository) ListBefore(_ context.Context, userID string, week int) ([]pick.Pick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pick.Pick, 0, len(r.byUser[userID]))
	for w, p := range r.byUser[userID] {
		if w < week {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekNumber < out[j].WeekNumber })
	return out, nil
}

func (r *PickRepository) ListByWeek(_ context.Context, week int) ([]pick.Pick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pick.Pick, 0, 16)
	for _, userID := range r.sortedUserIDs() {
		if p, ok := r.byUser[userID][week]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *PickRepository) ListUnresolved(_ context.Context) ([]pick.Pick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pick.Pick, 0, 16)
	for _, p := range r.listAllLocked() {
		if !p.Resolved() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *PickRepository) ListAll(_ context.Context) ([]pick.Pick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.listAllLocked(), nil
}

func (r *PickRepository) Put(_ context.Context, p pick.Pick) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	weeks, ok := r.byUser[p.UserID]
	if !ok {
		weeks = make(map[int]pick.Pick)
		r.byUser[p.UserID] = weeks
	}
	weeks[p.WeekNumber] = p
	return nil
}

func (r *PickRepository) listAllLocked() []pick.Pick {
	out := make([]pick.Pick, 0, 32)
	for _, userID := range r.sortedUserIDs() {
		weeks := make([]int, 0, len(r.byUser[userID]))
		for w := range r.byUser[userID] {
			weeks = append(weeks, w)
		}
		sort.Ints(weeks)
		for _, w := range weeks {
			out = append(out, r.byUser[userID][w])
		}
	}
	return out
}

func (r *PickRepository) sortedUserIDs() []string {
	ids := make([]string, 0, len(r.byUser))
	for id := range r.byUser {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
