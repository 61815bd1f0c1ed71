package link

import (
	"net/http"

	"linkdeck/internal/handler/http/pathutil"
	"linkdeck/internal/handler/http/respond"
	linkUC "linkdeck/internal/usecase/link"
)

type ListHandler struct{ Svc *linkUC.Service }

// ServeHTTP returns a profile's links ordered by position.
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	profileID, err := pathutil.ParseID(r.PathValue("profileID"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	links, err := h.Svc.ListByProfile(r.Context(), profileID)
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}

	respond.JSON(w, http.StatusOK, toDTOs(links))
}
