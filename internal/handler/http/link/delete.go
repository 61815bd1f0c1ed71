package link

import (
	"net/http"

	"linkdeck/internal/handler/http/pathutil"
	"linkdeck/internal/handler/http/respond"
	linkUC "linkdeck/internal/usecase/link"
)

type DeleteHandler struct{ Svc *linkUC.Service }

// ServeHTTP removes a link. A preview persistence job still in flight for
// the deleted link becomes a no-op write.
func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ParseID(r.PathValue("id"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.Svc.Delete(r.Context(), id); err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
