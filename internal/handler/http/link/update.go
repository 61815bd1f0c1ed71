package link

import (
	"encoding/json"
	"net/http"

	"linkdeck/internal/handler/http/pathutil"
	"linkdeck/internal/handler/http/respond"
	linkUC "linkdeck/internal/usecase/link"
)

type UpdateHandler struct{ Svc *linkUC.Service }

// ServeHTTP partially updates a link. Absent fields are left untouched;
// a supplied URL is re-normalized before storage.
func (h UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Title    *string `json:"title"`
		URL      *string `json:"url"`
		Icon     *string `json:"icon"`
		Position *int    `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	updated, err := h.Svc.Update(r.Context(), linkUC.UpdateInput{
		ID:       id,
		Title:    req.Title,
		URL:      req.URL,
		Icon:     req.Icon,
		Position: req.Position,
	})
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}

	respond.JSON(w, http.StatusOK, toDTO(updated))
}
