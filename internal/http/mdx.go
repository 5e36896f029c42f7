package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/content"
)

type documentPayload struct {
	ID      string    `json:"id,omitempty"`
	Slug    string    `json:"slug"`
	Content string    `json:"content"`
	Title   string    `json:"title,omitempty"`
	Date    time.Time `json:"date,omitzero"`
	Tags    []string  `json:"tags,omitempty"`
	Excerpt string    `json:"excerpt,omitempty"`
	Author  string    `json:"author,omitempty"`
}

type mdxSavePayload struct {
	Slug    string `json:"slug"`
	Content string `json:"content"`
	Mode    string `json:"mode,omitempty"`
}

func newDocumentPayload(doc *content.Document) documentPayload {
	return documentPayload{
		ID:      doc.ID,
		Slug:    doc.Slug,
		Content: doc.Raw,
		Title:   doc.Fields.Title,
		Date:    doc.Fields.Date,
		Tags:    doc.Fields.Tags,
		Excerpt: doc.Fields.Excerpt,
		Author:  doc.Fields.Author,
	}
}

func (api *API) registerMDXRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/mdx", api.handleMDXGet)
	mux.HandleFunc("POST /api/mdx", api.admin(api.handleMDXSave))
}

func (api *API) handleMDXGet(w http.ResponseWriter, r *http.Request) {
	if api.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	slug := strings.TrimSpace(r.URL.Query().Get("id"))
	if slug == "" {
		badRequest(w, "id query parameter is required")
		return
	}
	doc, err := api.store.FetchBySlug(r.Context(), slug)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newDocumentPayload(doc))
}

func (api *API) handleMDXSave(w http.ResponseWriter, r *http.Request) {
	if api.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	var payload mdxSavePayload
	if err := decodeJSON(r, &payload); err != nil {
		badRequest(w, err.Error())
		return
	}
	mode, err := content.ParseSaveMode(payload.Mode)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	doc, err := api.store.Save(r.Context(), content.SaveRequest{
		Slug: payload.Slug,
		Raw:  payload.Content,
		Mode: mode,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if mode == content.ModeCreate {
		status = http.StatusCreated
	}
	writeJSON(w, status, newDocumentPayload(doc))
}
