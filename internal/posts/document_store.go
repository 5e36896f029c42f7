package posts

import (
	"context"
	"strconv"
	"strings"

	"github.com/goliatone/go-blog/internal/content"
	"github.com/goliatone/go-blog/internal/frontmatter"
	"github.com/goliatone/go-blog/internal/metadata"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DocumentStore exposes posts as raw content documents. Saves keep the
// post columns in step with the metadata block of the saved blob.
type DocumentStore struct {
	service       Service
	publishedOnly bool
}

// DocumentStoreOption configures a DocumentStore.
type DocumentStoreOption func(*DocumentStore)

// WithPublishedOnly hides unpublished posts from lookups.
func WithPublishedOnly(enabled bool) DocumentStoreOption {
	return func(s *DocumentStore) {
		s.publishedOnly = enabled
	}
}

// NewDocumentStore adapts a posts service to content.Store.
func NewDocumentStore(service Service, opts ...DocumentStoreOption) *DocumentStore {
	s := &DocumentStore{service: service}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ content.Store = (*DocumentStore)(nil)

func (s *DocumentStore) FetchBySlug(ctx context.Context, slug string) (*content.Document, error) {
	if content.NormalizeSlug(slug) == "" {
		return nil, content.ErrEmptySlug
	}
	post, err := s.service.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.visible(post, slug)
}

func (s *DocumentStore) FetchByID(ctx context.Context, id string) (*content.Document, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, &content.NotFoundError{Resource: "post", Key: id}
	}
	post, err := s.service.Get(ctx, parsed)
	if err != nil {
		return nil, err
	}
	return s.visible(post, id)
}

func (s *DocumentStore) Save(ctx context.Context, req content.SaveRequest) (*content.Document, error) {
	if content.NormalizeSlug(req.Slug) == "" {
		return nil, content.ErrEmptySlug
	}
	slugValue, err := NormalizeSlug(req.Slug)
	if err != nil {
		return nil, err
	}
	fm, _ := frontmatter.Split(req.Raw)

	existing, err := s.service.GetBySlug(ctx, slugValue)
	switch {
	case err == nil && req.Mode == content.ModeCreate:
		return nil, &content.ConflictError{Resource: "post", Key: slugValue}
	case err == nil:
		return s.overwrite(ctx, existing, req.Raw, fm)
	case !content.IsNotFound(err):
		return nil, err
	}

	create := CreatePostRequest{
		Title:     firstNonBlank(fm.String(frontmatter.KeyTitle), titleFromSlug(slugValue)),
		Content:   req.Raw,
		Slug:      slugValue,
		Excerpt:   optional(firstNonBlank(fm.String(frontmatter.KeyDescription), fm.String("excerpt"))),
		Author:    optional(fm.String(frontmatter.KeyAuthor)),
		Tags:      fm.Strings(frontmatter.KeyTags),
		Published: publishedFlag(fm),
	}
	if date, ok := metadata.ParseDate(fm.String(frontmatter.KeyDate)); ok {
		create.Date = &date
	}
	if cover := firstNonBlank(fm.String("coverImage"), fm.String("image")); cover != "" {
		create.CoverImage = &cover
	}
	post, err := s.service.Create(ctx, create)
	if err != nil {
		return nil, err
	}
	return toDocument(post), nil
}

func (s *DocumentStore) overwrite(ctx context.Context, existing *Post, raw string, fm frontmatter.Frontmatter) (*content.Document, error) {
	// The blob replaces the old one wholesale, so columns the new
	// frontmatter omits are cleared instead of kept.
	title := firstNonBlank(fm.String(frontmatter.KeyTitle), titleFromSlug(existing.Slug))
	excerpt := firstNonBlank(fm.String(frontmatter.KeyDescription), fm.String("excerpt"))
	author := fm.String(frontmatter.KeyAuthor)
	tags := fm.Strings(frontmatter.KeyTags)
	if tags == nil {
		tags = []string{}
	}
	update := UpdatePostRequest{
		ID:      existing.ID,
		Content: &raw,
		Title:   &title,
		Excerpt: &excerpt,
		Author:  &author,
		Tags:    &tags,
	}
	if date, ok := metadata.ParseDate(fm.String(frontmatter.KeyDate)); ok {
		update.Date = &date
	}
	if _, hasPublished := fm.Get("published"); hasPublished {
		update.Published = publishedFlag(fm)
	} else if _, hasDraft := fm.Get("draft"); hasDraft {
		update.Published = publishedFlag(fm)
	}
	post, err := s.service.Update(ctx, update)
	if err != nil {
		return nil, err
	}
	return toDocument(post), nil
}

func (s *DocumentStore) visible(post *Post, key string) (*content.Document, error) {
	if s.publishedOnly && !post.Published {
		return nil, &content.NotFoundError{Resource: "post", Key: key}
	}
	return toDocument(post), nil
}

func toDocument(post *Post) *content.Document {
	doc := &content.Document{
		ID:   post.ID.String(),
		Slug: post.Slug,
		Raw:  post.Content,
		Fields: content.Fields{
			Title: post.Title,
			Date:  post.Date,
			Tags:  append([]string{}, post.Tags...),
		},
	}
	if post.Excerpt != nil {
		doc.Fields.Excerpt = *post.Excerpt
	}
	if post.Author != nil {
		doc.Fields.Author = *post.Author
	}
	return doc
}

// publishedFlag reads "published" first, then the inverse of "draft".
// Posts saved without either are published.
func publishedFlag(fm frontmatter.Frontmatter) *bool {
	published := true
	if value, err := strconv.ParseBool(fm.String("published")); err == nil {
		published = value
	} else if value, err := strconv.ParseBool(fm.String("draft")); err == nil {
		published = !value
	}
	return &published
}

func titleFromSlug(slugValue string) string {
	last := slugValue
	if idx := strings.LastIndex(slugValue, "/"); idx >= 0 {
		last = slugValue[idx+1:]
	}
	words := strings.Fields(strings.ReplaceAll(last, "-", " "))
	return cases.Title(language.Und).String(strings.Join(words, " "))
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
