package posts

import (
	"context"
	"slices"
	"sync"

	"github.com/goliatone/go-blog/internal/content"
	"github.com/google/uuid"
)

type memoryPostRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*Post
	bySlug map[string]uuid.UUID
}

// NewMemoryPostRepository constructs an in-memory repository for posts.
func NewMemoryPostRepository() PostRepository {
	return &memoryPostRepository{
		byID:   make(map[uuid.UUID]*Post),
		bySlug: make(map[string]uuid.UUID),
	}
}

func (m *memoryPostRepository) Create(_ context.Context, post *Post) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.bySlug[post.Slug]; exists {
		return nil, &content.ConflictError{Resource: "post", Key: post.Slug}
	}
	cloned := clonePost(post)
	if cloned.ID == uuid.Nil {
		cloned.ID = uuid.New()
	}
	m.byID[cloned.ID] = cloned
	m.bySlug[cloned.Slug] = cloned.ID
	return clonePost(cloned), nil
}

func (m *memoryPostRepository) GetByID(_ context.Context, id uuid.UUID) (*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	post, ok := m.byID[id]
	if !ok {
		return nil, &content.NotFoundError{Resource: "post", Key: id.String()}
	}
	return clonePost(post), nil
}

func (m *memoryPostRepository) GetBySlug(_ context.Context, slug string) (*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.bySlug[slug]
	if !ok {
		return nil, &content.NotFoundError{Resource: "post", Key: slug}
	}
	return clonePost(m.byID[id]), nil
}

func (m *memoryPostRepository) List(_ context.Context, query ListQuery) ([]*Post, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]*Post, 0, len(m.byID))
	for _, post := range m.byID {
		if matchesQuery(post, query) {
			matched = append(matched, post)
		}
	}
	slices.SortFunc(matched, func(a, b *Post) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	total := len(matched)
	start := min(max(query.Offset, 0), total)
	end := total
	if query.Limit > 0 {
		end = min(start+query.Limit, total)
	}

	out := make([]*Post, 0, end-start)
	for _, post := range matched[start:end] {
		out = append(out, clonePost(post))
	}
	return out, total, nil
}

func (m *memoryPostRepository) Update(_ context.Context, post *Post) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[post.ID]
	if !ok {
		return nil, &content.NotFoundError{Resource: "post", Key: post.ID.String()}
	}
	if owner, taken := m.bySlug[post.Slug]; taken && owner != post.ID {
		return nil, &content.ConflictError{Resource: "post", Key: post.Slug}
	}
	delete(m.bySlug, existing.Slug)
	cloned := clonePost(post)
	m.byID[cloned.ID] = cloned
	m.bySlug[cloned.Slug] = cloned.ID
	return clonePost(cloned), nil
}

func (m *memoryPostRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[id]
	if !ok {
		return &content.NotFoundError{Resource: "post", Key: id.String()}
	}
	delete(m.bySlug, existing.Slug)
	delete(m.byID, id)
	return nil
}

func matchesQuery(post *Post, query ListQuery) bool {
	if query.Published != nil && post.Published != *query.Published {
		return false
	}
	if query.Featured != nil && post.Featured != *query.Featured {
		return false
	}
	if query.CategoryID != nil && (post.CategoryID == nil || *post.CategoryID != *query.CategoryID) {
		return false
	}
	if query.Tag != "" && !slices.Contains(post.Tags, query.Tag) {
		return false
	}
	return true
}

type memoryCategoryRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*Category
	bySlug map[string]uuid.UUID
}

// NewMemoryCategoryRepository constructs an in-memory repository for categories.
func NewMemoryCategoryRepository() CategoryRepository {
	return &memoryCategoryRepository{
		byID:   make(map[uuid.UUID]*Category),
		bySlug: make(map[string]uuid.UUID),
	}
}

func (m *memoryCategoryRepository) Create(_ context.Context, category *Category) (*Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.bySlug[category.Slug]; exists {
		return nil, &content.ConflictError{Resource: "category", Key: category.Slug}
	}
	cloned := cloneCategory(category)
	if cloned.ID == uuid.Nil {
		cloned.ID = uuid.New()
	}
	m.byID[cloned.ID] = cloned
	m.bySlug[cloned.Slug] = cloned.ID
	return cloneCategory(cloned), nil
}

func (m *memoryCategoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	category, ok := m.byID[id]
	if !ok {
		return nil, &content.NotFoundError{Resource: "category", Key: id.String()}
	}
	return cloneCategory(category), nil
}

func (m *memoryCategoryRepository) GetBySlug(_ context.Context, slug string) (*Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.bySlug[slug]
	if !ok {
		return nil, &content.NotFoundError{Resource: "category", Key: slug}
	}
	return cloneCategory(m.byID[id]), nil
}

func (m *memoryCategoryRepository) List(_ context.Context) ([]*Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Category, 0, len(m.byID))
	for _, category := range m.byID {
		out = append(out, cloneCategory(category))
	}
	slices.SortFunc(out, func(a, b *Category) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return out, nil
}
