package http

import (
	"reflect"
	"testing"

	"github.com/goliatone/go-blog/internal/metadata"
	"github.com/goliatone/go-blog/internal/render"
)

func TestPageFromResultBylineFallsBackToAuthor(t *testing.T) {
	page := pageFromResult(&render.Result{
		State:    render.StateRendered,
		Metadata: &metadata.Metadata{Author: "Ada", Authors: []string{}, Path: "blog/x"},
	})
	if !reflect.DeepEqual(page.Authors, []string{"Ada"}) {
		t.Fatalf("expected byline from author, got %v", page.Authors)
	}
	if page.Path != "/blog/x" {
		t.Fatalf("unexpected path %q", page.Path)
	}

	page = pageFromResult(&render.Result{
		State:    render.StateRendered,
		Metadata: &metadata.Metadata{Author: "Ada", Authors: []string{"Ana", "Bo"}},
	})
	if !reflect.DeepEqual(page.Authors, []string{"Ana", "Bo"}) {
		t.Fatalf("expected explicit authors to win, got %v", page.Authors)
	}
}
