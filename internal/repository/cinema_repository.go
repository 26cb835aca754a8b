package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/iliyamo/cinebook/internal/model"
)

// CinemaRepo stores venues in memory.  Cinemas are never deleted; only
// their movie lists change as movies are created and removed.
type CinemaRepo struct {
	mu      sync.RWMutex
	nextID  uint64
	cinemas map[uint64]*model.Cinema
}

// NewCinemaRepo returns an empty CinemaRepo.
func NewCinemaRepo() *CinemaRepo {
	return &CinemaRepo{nextID: 1, cinemas: make(map[uint64]*model.Cinema)}
}

// Create assigns an ID to c and stores it.  The caller keeps no
// reference to the stored value; later reads return clones.
func (r *CinemaRepo) Create(ctx context.Context, c *model.Cinema) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = r.nextID
	r.nextID++
	r.cinemas[c.ID] = c.Clone()
	return nil
}

// GetByID returns a copy of the cinema or ErrCinemaNotFound.
func (r *CinemaRepo) GetByID(ctx context.Context, id uint64) (*model.Cinema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cinemas[id]
	if !ok {
		return nil, ErrCinemaNotFound
	}
	return c.Clone(), nil
}

// List returns all cinemas ordered by ID.
func (r *CinemaRepo) List(ctx context.Context) ([]*model.Cinema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Cinema, 0, len(r.cinemas))
	for _, c := range r.cinemas {
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// AttachMovie adds movieID to the cinema's movie list if missing.
func (r *CinemaRepo) AttachMovie(ctx context.Context, cinemaID, movieID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cinemas[cinemaID]
	if !ok {
		return ErrCinemaNotFound
	}
	for _, id := range c.MovieIDs {
		if id == movieID {
			return nil
		}
	}
	c.MovieIDs = append(c.MovieIDs, movieID)
	return nil
}

// DetachMovie removes movieID from the cinema's movie list and reports
// whether it was present.
func (r *CinemaRepo) DetachMovie(ctx context.Context, cinemaID, movieID uint64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cinemas[cinemaID]
	if !ok {
		return false, ErrCinemaNotFound
	}
	for i, id := range c.MovieIDs {
		if id == movieID {
			c.MovieIDs = append(c.MovieIDs[:i], c.MovieIDs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}
