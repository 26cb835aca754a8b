package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/iliyamo/cinebook/internal/model"
)

// DefaultSnacks is the concession menu every deployment starts with.
func DefaultSnacks() []model.Snack {
	return []model.Snack{
		{ID: 1, Name: "Regular Popcorn", Description: "Freshly popped corn", Price: 12000, Category: model.SnackFood, IsAvailable: true},
		{ID: 2, Name: "Large Popcorn", Description: "Extra large serving of popcorn", Price: 18000, Category: model.SnackFood, IsAvailable: true},
		{ID: 3, Name: "Caramel Popcorn", Description: "Sweet caramel glazed popcorn", Price: 15000, Category: model.SnackFood, IsAvailable: true},
		{ID: 4, Name: "Cheese Popcorn", Description: "Cheesy flavored popcorn", Price: 15000, Category: model.SnackFood, IsAvailable: true},
		{ID: 5, Name: "Regular Soda", Description: "16oz soda drink", Price: 8000, Category: model.SnackDrink, IsAvailable: true},
		{ID: 6, Name: "Large Soda", Description: "24oz soda drink", Price: 11000, Category: model.SnackDrink, IsAvailable: true},
		{ID: 7, Name: "Bottled Water", Description: "500ml purified water", Price: 5000, Category: model.SnackDrink, IsAvailable: true},
		{ID: 8, Name: "Iced Tea", Description: "16oz sweet iced tea", Price: 9000, Category: model.SnackDrink, IsAvailable: true},
		{ID: 9, Name: "Nachos", Description: "Crispy nachos with cheese dip", Price: 15000, Category: model.SnackFood, IsAvailable: true},
		{ID: 10, Name: "Hotdog Sandwich", Description: "Classic hotdog sandwich", Price: 12000, Category: model.SnackFood, IsAvailable: true},
		{ID: 11, Name: "Movie Combo 1", Description: "Regular popcorn + Regular soda", Price: 18000, Category: model.SnackCombo, IsAvailable: true},
		{ID: 12, Name: "Movie Combo 2", Description: "Large popcorn + 2 Regular sodas", Price: 25000, Category: model.SnackCombo, IsAvailable: true},
		{ID: 13, Name: "Family Combo", Description: "2 Large popcorn + 4 Regular sodas + Nachos", Price: 45000, Category: model.SnackCombo, IsAvailable: true},
	}
}

// SnackRepo is the read-only snack catalog.  Entries are seeded once at
// construction.
type SnackRepo struct {
	mu     sync.RWMutex
	snacks map[uint64]model.Snack
}

// NewSnackRepo seeds the catalog with the given snacks.
func NewSnackRepo(seed []model.Snack) *SnackRepo {
	m := make(map[uint64]model.Snack, len(seed))
	for _, s := range seed {
		m[s.ID] = s
	}
	return &SnackRepo{snacks: m}
}

// GetByID returns the snack or ErrSnackNotFound.
func (r *SnackRepo) GetByID(ctx context.Context, id uint64) (model.Snack, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.snacks[id]
	if !ok {
		return model.Snack{}, ErrSnackNotFound
	}
	return s, nil
}

// List returns every snack ordered by ID.
func (r *SnackRepo) List(ctx context.Context) ([]model.Snack, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Snack, 0, len(r.snacks))
	for _, s := range r.snacks {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListAvailable returns only snacks that can currently be ordered.
func (r *SnackRepo) ListAvailable(ctx context.Context) ([]model.Snack, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, s := range all {
		if s.IsAvailable {
			out = append(out, s)
		}
	}
	return out, nil
}
