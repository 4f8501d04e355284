package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"fitcheck-backend/internal/db"
	"fitcheck-backend/internal/models"
	"fitcheck-backend/pkg/storage"
)

var errBoom = errors.New("boom")

type fakeOutfitRepo struct {
	mu      sync.Mutex
	outfits map[string]*models.Outfit
	seq     int
	failGet error
}

func newFakeOutfitRepo() *fakeOutfitRepo {
	return &fakeOutfitRepo{outfits: map[string]*models.Outfit{}}
}

func (r *fakeOutfitRepo) put(o *models.Outfit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.outfits[o.ID] = &cp
}

func (r *fakeOutfitRepo) get(id string) *models.Outfit {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.outfits[id]
	if !ok {
		return nil
	}
	cp := *o
	return &cp
}

func (r *fakeOutfitRepo) Create(_ context.Context, o *models.Outfit) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	o.ID = fmt.Sprintf("outfit-%d", r.seq)
	o.CreatedAt = time.Unix(int64(r.seq), 0)
	cp := *o
	r.outfits[o.ID] = &cp
	return o.ID, nil
}

func (r *fakeOutfitRepo) GetByID(_ context.Context, id string) (*models.Outfit, error) {
	if r.failGet != nil {
		return nil, r.failGet
	}
	if o := r.get(id); o != nil {
		return o, nil
	}
	return nil, fmt.Errorf("outfit %s: %w", id, db.ErrNotFound)
}

func (r *fakeOutfitRepo) ListFeed(_ context.Context, limit int, _ string) ([]*models.Outfit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Outfit
	for _, o := range r.outfits {
		cp := *o
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeOutfitRepo) ListByOwner(_ context.Context, userID string) ([]*models.Outfit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Outfit
	for _, o := range r.outfits {
		if o.UserID == userID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeOutfitRepo) ListIDs(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id := range r.outfits {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *fakeOutfitRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.outfits[id]; !ok {
		return fmt.Errorf("outfit %s: %w", id, db.ErrNotFound)
	}
	delete(r.outfits, id)
	return nil
}

func (r *fakeOutfitRepo) mutate(id string, f func(o *models.Outfit)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.outfits[id]
	if !ok {
		return fmt.Errorf("outfit %s: %w", id, db.ErrNotFound)
	}
	f(o)
	return nil
}

func (r *fakeOutfitRepo) UpdateRatingStats(_ context.Context, id string, count int, avg float64) error {
	return r.mutate(id, func(o *models.Outfit) { o.RatingCount, o.AverageRating = count, avg })
}

func (r *fakeOutfitRepo) SetAISuggestionGeneratedAt(_ context.Context, id string, at time.Time) error {
	return r.mutate(id, func(o *models.Outfit) { o.AISuggestionGeneratedAt = &at })
}

func (r *fakeOutfitRepo) IncrementCommentCount(_ context.Context, id string, delta int) error {
	return r.mutate(id, func(o *models.Outfit) { o.CommentCount += delta })
}

type fakeRatingRepo struct {
	mu       sync.Mutex
	ratings  map[string]map[string]*models.Rating
	order    map[string][]string
	failList error
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{ratings: map[string]map[string]*models.Rating{}, order: map[string][]string{}}
}

func (r *fakeRatingRepo) Upsert(_ context.Context, outfitID, userID string, value int) (*models.Rating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byUser, ok := r.ratings[outfitID]
	if !ok {
		byUser = map[string]*models.Rating{}
		r.ratings[outfitID] = byUser
	}
	now := time.Now()
	existing, ok := byUser[userID]
	if !ok {
		existing = &models.Rating{UserID: userID, CreatedAt: now}
		byUser[userID] = existing
		r.order[outfitID] = append(r.order[outfitID], userID)
	}
	existing.Value = value
	existing.UpdatedAt = now
	cp := *existing
	return &cp, nil
}

func (r *fakeRatingRepo) Get(_ context.Context, outfitID, userID string) (*models.Rating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rating, ok := r.ratings[outfitID][userID]; ok {
		cp := *rating
		return &cp, nil
	}
	return nil, fmt.Errorf("rating %s/%s: %w", outfitID, userID, db.ErrNotFound)
}

func (r *fakeRatingRepo) ListValues(_ context.Context, outfitID string, limit int) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failList != nil {
		return nil, r.failList
	}
	values := []int{}
	for _, uid := range r.order[outfitID] {
		if limit > 0 && len(values) == limit {
			break
		}
		values = append(values, r.ratings[outfitID][uid].Value)
	}
	return values, nil
}

func (r *fakeRatingRepo) DeleteAll(_ context.Context, outfitID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ratings, outfitID)
	delete(r.order, outfitID)
	return nil
}

func (r *fakeRatingRepo) count(outfitID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ratings[outfitID])
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments map[string][]*models.Comment
	seq      int
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: map[string][]*models.Comment{}}
}

func (r *fakeCommentRepo) Add(_ context.Context, outfitID string, c *models.Comment) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	c.ID = fmt.Sprintf("comment-%d", r.seq)
	c.CreatedAt = time.Unix(int64(r.seq), 0)
	cp := *c
	r.comments[outfitID] = append(r.comments[outfitID], &cp)
	return c.ID, nil
}

func (r *fakeCommentRepo) Get(_ context.Context, outfitID, commentID string) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.comments[outfitID] {
		if c.ID == commentID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("comment %s: %w", commentID, db.ErrNotFound)
}

func (r *fakeCommentRepo) Delete(_ context.Context, outfitID, commentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.comments[outfitID]
	for i, c := range list {
		if c.ID == commentID {
			r.comments[outfitID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("comment %s: %w", commentID, db.ErrNotFound)
}

func (r *fakeCommentRepo) ListRecent(_ context.Context, outfitID string, limit int) ([]*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.comments[outfitID]
	out := []*models.Comment{}
	for i := len(list) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		cp := *list[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeCommentRepo) ListAll(_ context.Context, outfitID string) ([]*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Comment{}
	for _, c := range r.comments[outfitID] {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeCommentRepo) DeleteAll(_ context.Context, outfitID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.comments, outfitID)
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.UserProfile
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.UserProfile{}}
}

func (r *fakeUserRepo) put(u *models.UserProfile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.UID] = &cp
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, fmt.Errorf("user %s: %w", id, db.ErrNotFound)
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.UID]; ok {
		return fmt.Errorf("user %s: %w", u.UID, db.ErrAlreadyExists)
	}
	cp := *u
	r.users[u.UID] = &cp
	return nil
}

func (r *fakeUserRepo) UpdateRatingStats(_ context.Context, id string, stats models.UserStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, db.ErrNotFound)
	}
	u.Stats = stats
	return nil
}

func (r *fakeUserRepo) IncrementOutfitCount(_ context.Context, id string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, db.ErrNotFound)
	}
	u.Stats.OutfitCount += delta
	return nil
}

type fakeSuggestionRepo struct {
	mu          sync.Mutex
	suggestions map[string]*models.AISuggestion
	now         func() time.Time
	failDelete  error
	saves       int
}

func newFakeSuggestionRepo(now func() time.Time) *fakeSuggestionRepo {
	return &fakeSuggestionRepo{suggestions: map[string]*models.AISuggestion{}, now: now}
}

func (r *fakeSuggestionRepo) Get(_ context.Context, outfitID string) (*models.AISuggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.suggestions[outfitID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, fmt.Errorf("suggestion %s: %w", outfitID, db.ErrNotFound)
}

func (r *fakeSuggestionRepo) Save(_ context.Context, s *models.AISuggestion) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	s.GeneratedAt = r.now()
	cp := *s
	r.suggestions[s.OutfitID] = &cp
	return s.GeneratedAt, nil
}

func (r *fakeSuggestionRepo) Delete(_ context.Context, outfitID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failDelete != nil {
		return r.failDelete
	}
	delete(r.suggestions, outfitID)
	return nil
}

func (r *fakeSuggestionRepo) has(outfitID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.suggestions[outfitID]
	return ok
}

type fakeLLM struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (l *fakeLLM) Complete(_ context.Context, prompt string) (string, string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prompts = append(l.prompts, prompt)
	if l.err != nil {
		return "", "", l.err
	}
	return l.reply, "test-model", nil
}

func (l *fakeLLM) calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.prompts)
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string]bool
	failErr error
}

func newFakeStore(paths ...string) *fakeStore {
	s := &fakeStore{objects: map[string]bool{}}
	for _, p := range paths {
		s.objects[p] = true
	}
	return s
}

func (s *fakeStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	if !s.objects[path] {
		return fmt.Errorf("object %s: %w", path, storage.ErrObjectNotFound)
	}
	delete(s.objects, path)
	return nil
}

func (s *fakeStore) has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[path]
}

type fakeCache struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakeCache() *fakeCache { return &fakeCache{values: map[string]string{}} }

func (c *fakeCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		c.values[key] = string(v)
	case string:
		c.values[key] = v
	default:
		c.values[key] = fmt.Sprint(v)
	}
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	return nil
}

type fakePublisher struct {
	mu            sync.Mutex
	ratingWritten []string
	outfitDeleted []*models.Outfit
}

func (p *fakePublisher) PublishRatingWritten(_ context.Context, outfitID, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ratingWritten = append(p.ratingWritten, outfitID)
	return nil
}

func (p *fakePublisher) PublishOutfitDeleted(_ context.Context, o *models.Outfit) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outfitDeleted = append(p.outfitDeleted, o)
	return nil
}
