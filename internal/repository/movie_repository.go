package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/cinebook/internal/model"
)

// MovieRepo stores movies and owns their schedules.  Creating or
// deleting a movie keeps the owning cinema's movie list in step.
type MovieRepo struct {
	mu      sync.RWMutex
	nextID  uint64
	movies  map[uint64]*model.Movie
	cinemas *CinemaRepo
}

// NewMovieRepo returns an empty MovieRepo bound to the cinema store.
func NewMovieRepo(cinemas *CinemaRepo) *MovieRepo {
	return &MovieRepo{nextID: 1, movies: make(map[uint64]*model.Movie), cinemas: cinemas}
}

// MovieUpdate carries the editable movie fields.  Nil fields are left
// unchanged.
type MovieUpdate struct {
	Title           *string
	Genre           *string
	DurationMinutes *int
	Director        *string
	Synopsis        *string
	Rating          *string
	IsActive        *bool
}

// MovieFilter narrows List results.  Zero values disable a criterion.
// Search matches the title or the director, case-insensitively.
type MovieFilter struct {
	CinemaID uint64
	Genre    string
	Search   string
}

func cloneMovie(m *model.Movie) *model.Movie {
	cp := *m
	cp.Showtimes = append([]time.Time(nil), m.Showtimes...)
	return &cp
}

// Create stores m under a new ID and attaches it to its cinema.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	if _, err := r.cinemas.GetByID(ctx, m.CinemaID); err != nil {
		return err
	}
	r.mu.Lock()
	m.ID = r.nextID
	r.nextID++
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	normalized := make([]time.Time, 0, len(m.Showtimes))
	for _, s := range m.Showtimes {
		normalized = append(normalized, model.NormalizeShowtime(s))
	}
	m.Showtimes = normalized
	r.movies[m.ID] = cloneMovie(m)
	r.mu.Unlock()
	return r.cinemas.AttachMovie(ctx, m.CinemaID, m.ID)
}

// GetByID returns a copy of the movie or ErrMovieNotFound.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.movies[id]
	if !ok {
		return nil, ErrMovieNotFound
	}
	return cloneMovie(m), nil
}

// List returns all movies, active or not, ordered by ID.
func (r *MovieRepo) List(ctx context.Context) ([]*model.Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Movie, 0, len(r.movies))
	for _, m := range r.movies {
		out = append(out, cloneMovie(m))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Filter returns active movies matching f, ordered by ID.
func (r *MovieRepo) Filter(ctx context.Context, f MovieFilter) ([]*model.Movie, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]*model.Movie, 0, len(all))
	for _, m := range all {
		if !m.IsActive {
			continue
		}
		if f.CinemaID != 0 && m.CinemaID != f.CinemaID {
			continue
		}
		if f.Genre != "" && !strings.EqualFold(m.Genre, f.Genre) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(m.Title), search) &&
			!strings.Contains(strings.ToLower(m.Director), search) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// Update applies the non-nil fields of u.  The cinema of a movie cannot
// be changed.
func (r *MovieRepo) Update(ctx context.Context, id uint64, u MovieUpdate) (*model.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.movies[id]
	if !ok {
		return nil, ErrMovieNotFound
	}
	if u.Title != nil {
		m.Title = *u.Title
	}
	if u.Genre != nil {
		m.Genre = *u.Genre
	}
	if u.DurationMinutes != nil {
		m.DurationMinutes = *u.DurationMinutes
	}
	if u.Director != nil {
		m.Director = *u.Director
	}
	if u.Synopsis != nil {
		m.Synopsis = *u.Synopsis
	}
	if u.Rating != nil {
		m.Rating = *u.Rating
	}
	if u.IsActive != nil {
		m.IsActive = *u.IsActive
	}
	return cloneMovie(m), nil
}

// Delete removes the movie and detaches it from its cinema.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
	r.mu.Lock()
	m, ok := r.movies[id]
	if !ok {
		r.mu.Unlock()
		return ErrMovieNotFound
	}
	delete(r.movies, id)
	cinemaID := m.CinemaID
	r.mu.Unlock()
	_, err := r.cinemas.DetachMovie(ctx, cinemaID, id)
	return err
}

// AddShowtime appends t to the movie's schedule.  A showtime equal to an
// existing one is rejected with ErrDuplicateShowtime.
func (r *MovieRepo) AddShowtime(ctx context.Context, id uint64, t time.Time) error {
	t = model.NormalizeShowtime(t)
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.movies[id]
	if !ok {
		return ErrMovieNotFound
	}
	for _, s := range m.Showtimes {
		if s.Equal(t) {
			return ErrDuplicateShowtime
		}
	}
	m.Showtimes = append(m.Showtimes, t)
	return nil
}

// RemoveShowtime deletes t from the schedule.
func (r *MovieRepo) RemoveShowtime(ctx context.Context, id uint64, t time.Time) error {
	t = model.NormalizeShowtime(t)
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.movies[id]
	if !ok {
		return ErrMovieNotFound
	}
	for i, s := range m.Showtimes {
		if s.Equal(t) {
			m.Showtimes = append(m.Showtimes[:i], m.Showtimes[i+1:]...)
			return nil
		}
	}
	return ErrShowtimeNotFound
}

// ListShowtimes returns the movie's schedule in ascending order.
func (r *MovieRepo) ListShowtimes(ctx context.Context, id uint64) ([]time.Time, error) {
	m, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.SortedShowtimes(), nil
}

// ListActive returns every active movie ordered by ID.
func (r *MovieRepo) ListActive(ctx context.Context) ([]*model.Movie, error) {
	return r.Filter(ctx, MovieFilter{})
}
