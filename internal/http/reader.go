package http

import (
	"bytes"
	"net/http"

	"github.com/goliatone/go-blog/internal/layouts"
	"github.com/goliatone/go-blog/internal/render"
)

func (api *API) registerReaderRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET "+joinPath(api.readerPath, "{slug...}"), api.handleReadPost)
	mux.HandleFunc("GET /api/render/{slug...}", api.handleRenderJSON)
}

func (api *API) handleReadPost(w http.ResponseWriter, r *http.Request) {
	if api.renderer == nil || api.pages == nil {
		http.Error(w, "reader unavailable", http.StatusServiceUnavailable)
		return
	}
	result, err := api.renderer.Render(r.Context(), r.PathValue("slug"))
	if err != nil {
		api.logger.Error("http.reader.failed", "slug", r.PathValue("slug"), "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if result.State == render.StateNotFound {
		http.Error(w, "post not found", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := api.pages.Render(&buf, result.Layout, pageFromResult(result)); err != nil {
		api.logger.Error("http.reader.template_failed", "slug", result.Slug, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (api *API) handleRenderJSON(w http.ResponseWriter, r *http.Request) {
	if api.renderer == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	result, err := api.renderer.Render(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	if result.State == render.StateNotFound {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Message: "post not found"})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func pageFromResult(result *render.Result) layouts.Page {
	page := layouts.Page{
		Body:     result.HTML(),
		Headings: result.Headings,
	}
	if meta := result.Metadata; meta != nil {
		page.Title = meta.Title
		page.Description = meta.Description
		page.Date = meta.Date
		page.Authors = meta.Authors
		if len(page.Authors) == 0 && meta.Author != "" {
			page.Authors = []string{meta.Author}
		}
		page.Tags = meta.Tags
		page.Path = "/" + meta.Path
		page.CoverImage = meta.Extra.String("coverImage")
	}
	return page
}
