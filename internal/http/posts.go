package http

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-blog/internal/posts"
)

func (api *API) registerPostRoutes(mux *http.ServeMux) {
	root := "/api/posts"
	mux.HandleFunc("GET "+root, api.handlePostList)
	mux.HandleFunc("POST "+root, api.admin(api.handlePostCreate))
	mux.HandleFunc("GET "+root+"/recent", api.handlePostRecent)
	mux.HandleFunc("GET "+root+"/featured", api.handlePostFeatured)
	mux.HandleFunc("GET "+root+"/category/{categoryId}", api.handlePostsByCategory)
	mux.HandleFunc("GET "+root+"/slug/{slug...}", api.handlePostBySlug)
	mux.HandleFunc("GET "+root+"/{id}", api.handlePostGet)
	mux.HandleFunc("PUT "+root+"/{id}", api.admin(api.handlePostUpdate))
	mux.HandleFunc("DELETE "+root+"/{id}", api.admin(api.handlePostDelete))
}

func (api *API) postsUnavailable(w http.ResponseWriter) bool {
	if api.posts == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return true
	}
	return false
}

func (api *API) handlePostList(w http.ResponseWriter, r *http.Request) {
	if api.postsUnavailable(w) {
		return
	}
	query := r.URL.Query()
	opts := posts.ListOptions{
		Page:      parseIntQuery(query.Get("page"), 1),
		Limit:     parseIntQuery(query.Get("limit"), posts.DefaultPageSize),
		Published: parseBoolQuery(query.Get("published")),
		Featured:  parseBoolQuery(query.Get("featured")),
		Tag:       strings.TrimSpace(query.Get("tag")),
	}
	if raw := strings.TrimSpace(query.Get("categoryId")); raw != "" {
		id, err := parseUUID(raw)
		if err != nil {
			badRequest(w, "invalid categoryId")
			return
		}
		opts.CategoryID = &id
	}
	result, err := api.posts.List(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (api *API) handlePostRecent(w http.ResponseWriter, r *http.Request) {
	if api.postsUnavailable(w) {
		return
	}
	records, err := api.posts.Recent(r.Context(), parseIntQuery(r.URL.Query().Get("limit"), posts.DefaultShelf))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (api *API) handlePostFeatured(w http.ResponseWriter, r *http.Request) {
	if api.postsUnavailable(w) {
		return
	}
	records, err := api.posts.Featured(r.Context(), parseIntQuery(r.URL.Query().Get("limit"), posts.DefaultShelf))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (api *API) handlePostsByCategory(w http.ResponseWriter, r *http.Request) {
	if api.postsUnavailable(w) {
		return
	}
	id, err := parseUUID(r.PathValue("categoryId"))
	if err != nil {
		badRequest(w, "invalid category id")
		return
	}
	query := r.URL.Query()
	result, err := api.posts.ByCategory(r.Context(), id,
		parseIntQuery(query.Get("page"), 1),
		parseIntQuery(query.Get("limit"), posts.DefaultPageSize),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (api *API) handlePostBySlug(w http.ResponseWriter, r *http.Request) {
	if api.postsUnavailable(w) {
		return
	}
	record, err := api.posts.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (api *API) handlePostGet(w http.ResponseWriter, r *http.Request) {
	if api.postsUnavailable(w) {
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	record, err := api.posts.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (api *API) handlePostCreate(w http.ResponseWriter, r *http.Request) {
	if api.postsUnavailable(w) {
		return
	}
	var payload posts.CreatePostRequest
	if err := decodeJSON(r, &payload); err != nil {
		badRequest(w, err.Error())
		return
	}
	record, err := api.posts.Create(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (api *API) handlePostUpdate(w http.ResponseWriter, r *http.Request) {
	if api.postsUnavailable(w) {
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	var payload posts.UpdatePostRequest
	if err := decodeJSON(r, &payload); err != nil {
		badRequest(w, err.Error())
		return
	}
	payload.ID = id
	record, err := api.posts.Update(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (api *API) handlePostDelete(w http.ResponseWriter, r *http.Request) {
	if api.postsUnavailable(w) {
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	if err := api.posts.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *API) registerCategoryRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/categories", api.handleCategoryList)
	mux.HandleFunc("POST /api/categories", api.admin(api.handleCategoryCreate))
}

func (api *API) handleCategoryList(w http.ResponseWriter, r *http.Request) {
	if api.postsUnavailable(w) {
		return
	}
	categories, err := api.posts.ListCategories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (api *API) handleCategoryCreate(w http.ResponseWriter, r *http.Request) {
	if api.postsUnavailable(w) {
		return
	}
	var payload posts.CreateCategoryRequest
	if err := decodeJSON(r, &payload); err != nil {
		badRequest(w, err.Error())
		return
	}
	category, err := api.posts.CreateCategory(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}
