package content

import (
	"context"
	"strconv"
	"sync"
)

// MemoryStore is an in-memory Store keyed by slug.
type MemoryStore struct {
	mu     sync.RWMutex
	docs   map[string]*Document
	byID   map[string]string
	nextID int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty store, optionally seeded with documents.
func NewMemoryStore(seed ...Document) *MemoryStore {
	m := &MemoryStore{
		docs: make(map[string]*Document),
		byID: make(map[string]string),
	}
	for _, doc := range seed {
		m.put(doc)
	}
	return m
}

// FetchBySlug retrieves a document by slug, returning NotFoundError when absent.
func (m *MemoryStore) FetchBySlug(_ context.Context, slug string) (*Document, error) {
	slug = NormalizeSlug(slug)
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[slug]
	if !ok {
		return nil, &NotFoundError{Resource: "post", Key: slug}
	}
	return cloneDocument(doc), nil
}

// FetchByID retrieves a document by identifier.
func (m *MemoryStore) FetchByID(_ context.Context, id string) (*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	slug, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "post", Key: id}
	}
	return cloneDocument(m.docs[slug]), nil
}

// Save stores the blob under its slug honouring the requested mode.
func (m *MemoryStore) Save(ctx context.Context, req SaveRequest) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	slug := NormalizeSlug(req.Slug)
	if slug == "" {
		return nil, ErrEmptySlug
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.docs[slug]; ok {
		if req.Mode == ModeCreate {
			return nil, &ConflictError{Resource: "post", Key: slug}
		}
		existing.Raw = req.Raw
		return cloneDocument(existing), nil
	}

	return cloneDocument(m.put(Document{Slug: slug, Raw: req.Raw})), nil
}

func (m *MemoryStore) put(doc Document) *Document {
	doc.Slug = NormalizeSlug(doc.Slug)
	if doc.ID == "" {
		m.nextID++
		doc.ID = strconv.Itoa(m.nextID)
	}
	stored := cloneDocument(&doc)
	m.docs[stored.Slug] = stored
	m.byID[stored.ID] = stored.Slug
	return stored
}

func cloneDocument(doc *Document) *Document {
	if doc == nil {
		return nil
	}
	copied := *doc
	if doc.Fields.Tags != nil {
		copied.Fields.Tags = append([]string(nil), doc.Fields.Tags...)
	}
	return &copied
}
