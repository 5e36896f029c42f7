package http

import (
	"net/http"

	"github.com/goliatone/go-blog/internal/admin"
	"github.com/goliatone/go-blog/internal/auth"
	"github.com/goliatone/go-blog/internal/content"
)

type draftSavePayload struct {
	admin.Draft
	Mode string `json:"mode,omitempty"`
}

func (api *API) registerEditorRoutes(mux *http.ServeMux) {
	root := "/admin/api"
	mux.HandleFunc("POST "+root+"/drafts", api.admin(api.handleDraftCreate))
	mux.HandleFunc("GET "+root+"/drafts/{slug...}", api.admin(api.handleDraftLoad))
	mux.HandleFunc("PUT "+root+"/drafts/{slug...}", api.admin(api.handleDraftUpdate))
	mux.HandleFunc("POST "+root+"/preview", api.admin(api.handlePreview))
}

func (api *API) editorUnavailable(w http.ResponseWriter) bool {
	if api.editor == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return true
	}
	return false
}

func (api *API) handleDraftLoad(w http.ResponseWriter, r *http.Request) {
	if api.editorUnavailable(w) {
		return
	}
	result, err := api.editor.Load(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (api *API) handleDraftCreate(w http.ResponseWriter, r *http.Request) {
	if api.editorUnavailable(w) {
		return
	}
	var payload draftSavePayload
	if err := decodeJSON(r, &payload); err != nil {
		badRequest(w, err.Error())
		return
	}
	api.saveDraft(w, r, payload.Draft, content.ModeCreate, http.StatusCreated)
}

func (api *API) handleDraftUpdate(w http.ResponseWriter, r *http.Request) {
	if api.editorUnavailable(w) {
		return
	}
	var payload draftSavePayload
	if err := decodeJSON(r, &payload); err != nil {
		badRequest(w, err.Error())
		return
	}
	mode, err := content.ParseSaveMode(payload.Mode)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	payload.Draft.Slug = r.PathValue("slug")
	api.saveDraft(w, r, payload.Draft, mode, http.StatusOK)
}

func (api *API) saveDraft(w http.ResponseWriter, r *http.Request, draft admin.Draft, mode content.SaveMode, status int) {
	result, err := api.editor.Save(r.Context(), admin.SaveRequest{Draft: draft, Mode: mode})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, result)
}

func (api *API) handlePreview(w http.ResponseWriter, r *http.Request) {
	if api.editorUnavailable(w) {
		return
	}
	var draft admin.Draft
	if err := decodeJSON(r, &draft); err != nil {
		badRequest(w, err.Error())
		return
	}
	result, err := api.editor.Preview(r.Context(), draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (api *API) registerAuthRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/auth/me", api.handleAuthMe)
}

func (api *API) handleAuthMe(w http.ResponseWriter, r *http.Request) {
	if api.auth == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	claims, err := api.auth.Authenticate(r)
	if err != nil {
		auth.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":    claims.ID,
		"email": claims.Email,
		"role":  claims.Role,
	})
}
