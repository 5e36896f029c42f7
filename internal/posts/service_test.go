package posts

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/goliatone/go-blog/internal/content"
	"github.com/google/uuid"
)

func newTestService(t *testing.T) (Service, *time.Time) {
	t.Helper()
	now := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)
	svc := NewService(NewMemoryPostRepository(), NewMemoryCategoryRepository(), WithClock(func() time.Time {
		return now
	}))
	return svc, &now
}

func boolPtr(v bool) *bool { return &v }

func strPtr(v string) *string { return &v }

func TestCreateNormalizesSlugAndDefaults(t *testing.T) {
	svc, now := newTestService(t)
	ctx := context.Background()

	post, err := svc.Create(ctx, CreatePostRequest{
		Title:   "  Hello World ",
		Content: "# Hello",
		Slug:    "/2024//Hello World/",
		Tags:    []string{"go", " go ", "", "mdx"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if post.Slug != "2024/hello-world" {
		t.Fatalf("expected normalized slug, got %q", post.Slug)
	}
	if post.Title != "Hello World" {
		t.Fatalf("expected trimmed title, got %q", post.Title)
	}
	if post.Published || post.Featured {
		t.Fatalf("expected unpublished, unfeatured defaults")
	}
	if !post.Date.Equal(*now) {
		t.Fatalf("expected date to default to clock, got %v", post.Date)
	}
	if len(post.Tags) != 2 || post.Tags[0] != "go" || post.Tags[1] != "mdx" {
		t.Fatalf("unexpected tags %v", post.Tags)
	}
}

func TestCreateValidationFailures(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []CreatePostRequest{
		{Content: "body", Slug: "a"},
		{Title: "t", Slug: "a"},
		{Title: "t", Content: "body"},
		{Title: "t", Content: "body", Slug: "///"},
		{Title: "t", Content: "body", Slug: "!!!"},
	}
	for i, req := range cases {
		if _, err := svc.Create(ctx, req); !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d: expected ErrValidation, got %v", i, err)
		}
	}
}

func TestCreateRejectsDuplicateSlug(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	req := CreatePostRequest{Title: "One", Content: "x", Slug: "same"}
	if _, err := svc.Create(ctx, req); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.Create(ctx, req)
	if !content.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	svc, _ := newTestService(t)
	missing := uuid.New()
	_, err := svc.Create(context.Background(), CreatePostRequest{Title: "t", Content: "c", Slug: "s", CategoryID: &missing})
	if !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestUpdateAppliesPartialChanges(t *testing.T) {
	svc, now := newTestService(t)
	ctx := context.Background()

	post, err := svc.Create(ctx, CreatePostRequest{Title: "Draft", Content: "v1", Slug: "draft", Excerpt: strPtr("short")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	*now = now.Add(time.Hour)

	updated, err := svc.Update(ctx, UpdatePostRequest{ID: post.ID, Content: strPtr("v2"), Published: boolPtr(true)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Draft" || updated.Excerpt == nil || *updated.Excerpt != "short" {
		t.Fatalf("expected untouched fields to survive, got %+v", updated)
	}
	if updated.Content != "v2" || !updated.Published {
		t.Fatalf("expected content and published to change, got %+v", updated)
	}
	if !updated.UpdatedAt.Equal(*now) {
		t.Fatalf("expected updated_at to advance, got %v", updated.UpdatedAt)
	}
}

func TestUpdateDetectsSlugConflict(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreatePostRequest{Title: "A", Content: "a", Slug: "taken"}); err != nil {
		t.Fatalf("create a: %v", err)
	}
	b, err := svc.Create(ctx, CreatePostRequest{Title: "B", Content: "b", Slug: "free"})
	if err != nil {
		t.Fatalf("create b: %v", err)
	}
	if _, err := svc.Update(ctx, UpdatePostRequest{ID: b.ID, Slug: strPtr("Taken")}); !content.IsConflict(err) {
		t.Fatalf("expected conflict renaming onto taken slug, got %v", err)
	}
	if _, err := svc.Update(ctx, UpdatePostRequest{ID: b.ID, Slug: strPtr("free")}); err != nil {
		t.Fatalf("expected keeping own slug to succeed, got %v", err)
	}
}

func TestUpdateAndDeleteMissingPost(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Update(ctx, UpdatePostRequest{ID: uuid.New(), Title: strPtr("x")}); !content.IsNotFound(err) {
		t.Fatalf("expected not found on update, got %v", err)
	}
	if err := svc.Delete(ctx, uuid.New()); !content.IsNotFound(err) {
		t.Fatalf("expected not found on delete, got %v", err)
	}
	if _, err := svc.Update(ctx, UpdatePostRequest{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for missing id, got %v", err)
	}
}

func TestListPaginatesNewestFirst(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		date := base.AddDate(0, 0, i)
		if _, err := svc.Create(ctx, CreatePostRequest{
			Title:     fmt.Sprintf("Post %d", i),
			Content:   "body",
			Slug:      fmt.Sprintf("post-%d", i),
			Date:      &date,
			Published: boolPtr(i%2 == 0),
		}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	result, err := svc.List(ctx, ListOptions{Page: 2, Limit: 5})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := Pagination{Total: 12, Page: 2, Limit: 5, TotalPages: 3}
	if result.Pagination != want {
		t.Fatalf("expected pagination %+v, got %+v", want, result.Pagination)
	}
	if len(result.Posts) != 5 || result.Posts[0].Slug != "post-6" {
		t.Fatalf("expected second page to start at post-6, got %d posts starting %q", len(result.Posts), result.Posts[0].Slug)
	}

	published, err := svc.List(ctx, ListOptions{Published: boolPtr(true), Limit: 500})
	if err != nil {
		t.Fatalf("list published: %v", err)
	}
	if published.Pagination.Total != 6 || published.Pagination.Limit != MaxPageSize {
		t.Fatalf("unexpected published pagination %+v", published.Pagination)
	}

	recent, err := svc.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != DefaultShelf || recent[0].Slug != "post-10" {
		t.Fatalf("expected five newest published posts, got %d", len(recent))
	}
}

func TestFeaturedAndCategoryListings(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, CreateCategoryRequest{Name: "Engineering Notes"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if cat.Slug != "engineering-notes" {
		t.Fatalf("expected derived slug, got %q", cat.Slug)
	}
	if _, err := svc.CreateCategory(ctx, CreateCategoryRequest{Name: "Dup", Slug: "engineering-notes"}); !content.IsConflict(err) {
		t.Fatalf("expected category conflict, got %v", err)
	}

	if _, err := svc.Create(ctx, CreatePostRequest{Title: "A", Content: "a", Slug: "a", Published: boolPtr(true), Featured: boolPtr(true), CategoryID: &cat.ID}); err != nil {
		t.Fatalf("create a: %v", err)
	}
	if _, err := svc.Create(ctx, CreatePostRequest{Title: "B", Content: "b", Slug: "b", Featured: boolPtr(true), CategoryID: &cat.ID}); err != nil {
		t.Fatalf("create b: %v", err)
	}
	if _, err := svc.Create(ctx, CreatePostRequest{Title: "C", Content: "c", Slug: "c", Published: boolPtr(true)}); err != nil {
		t.Fatalf("create c: %v", err)
	}

	featured, err := svc.Featured(ctx, 5)
	if err != nil {
		t.Fatalf("featured: %v", err)
	}
	if len(featured) != 1 || featured[0].Slug != "a" {
		t.Fatalf("expected only published featured post, got %d", len(featured))
	}

	byCat, err := svc.ByCategory(ctx, cat.ID, 1, 10)
	if err != nil {
		t.Fatalf("by category: %v", err)
	}
	if byCat.Pagination.Total != 1 || byCat.Posts[0].Slug != "a" {
		t.Fatalf("expected one published post in category, got %+v", byCat.Pagination)
	}
	if _, err := svc.ByCategory(ctx, uuid.New(), 1, 10); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected unknown category error, got %v", err)
	}

	got, err := svc.GetBySlug(ctx, "/a/")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if got.Category == nil || got.Category.ID != cat.ID {
		t.Fatalf("expected category to be attached")
	}
}

func TestNormalizeSlug(t *testing.T) {
	cases := map[string]string{
		"Hello World":          "hello-world",
		"/2024/My First Post/": "2024/my-first-post",
		"already-valid":        "already-valid",
		"Über Café":            "über-café",
	}
	for input, want := range cases {
		got, err := NormalizeSlug(input)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", input, err)
		}
		if got != want {
			t.Fatalf("%q: expected %q, got %q", input, want, got)
		}
	}
	if _, err := NormalizeSlug("  "); !errors.Is(err, ErrInvalidSlug) {
		t.Fatalf("expected ErrInvalidSlug, got %v", err)
	}
}
