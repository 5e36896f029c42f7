// Package content defines the content repository contract consumed by the
// render pipeline and the admin editor: raw post blobs addressed by slug.
package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SaveMode selects create or overwrite semantics for Store.Save.
type SaveMode int

const (
	// ModeOverwrite replaces the blob stored under the slug, creating it when absent.
	ModeOverwrite SaveMode = iota
	// ModeCreate fails with a ConflictError when the slug already exists.
	ModeCreate
)

func (m SaveMode) String() string {
	if m == ModeCreate {
		return "create"
	}
	return "overwrite"
}

// ParseSaveMode maps "create" and "overwrite" onto a SaveMode. Empty input
// defaults to overwrite.
func ParseSaveMode(value string) (SaveMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "overwrite", "update":
		return ModeOverwrite, nil
	case "create":
		return ModeCreate, nil
	}
	return ModeOverwrite, fmt.Errorf("content: unknown save mode %q", value)
}

// Fields are the repository-sourced attributes stored alongside the blob.
// Zero values mean the repository has no opinion.
type Fields struct {
	Title   string
	Date    time.Time
	Tags    []string
	Excerpt string
	Author  string
}

// Document is a raw post blob as held by a content repository.
type Document struct {
	ID     string
	Slug   string
	Raw    string
	Fields Fields
}

// SaveRequest persists Raw under Slug.
type SaveRequest struct {
	Slug string
	Raw  string
	Mode SaveMode
}

// Store resolves and persists raw post blobs.
type Store interface {
	FetchBySlug(ctx context.Context, slug string) (*Document, error)
	FetchByID(ctx context.Context, id string) (*Document, error)
	Save(ctx context.Context, req SaveRequest) (*Document, error)
}

// ErrConflict is matched by ConflictError through errors.Is.
var ErrConflict = errors.New("content: conflict")

// ErrEmptySlug is returned when a lookup or save is attempted without a slug.
var ErrEmptySlug = errors.New("content: slug is required")

// NotFoundError represents missing records from repository lookups.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// ConflictError reports a create against an existing slug.
type ConflictError struct {
	Resource string
	Key      string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Resource, e.Key)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// IsNotFound reports whether err carries a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict reports whether err carries a ConflictError.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// NormalizeSlug trims surrounding whitespace and slashes and collapses empty
// path segments, so "/2024//hello/" and "2024/hello" address the same post.
func NormalizeSlug(slug string) string {
	parts := strings.Split(strings.TrimSpace(slug), "/")
	out := parts[:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return strings.Join(out, "/")
}

// JoinSegments joins catch-all route segments into a slug.
func JoinSegments(segments ...string) string {
	return NormalizeSlug(strings.Join(segments, "/"))
}
