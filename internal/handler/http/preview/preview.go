// Package preview provides the HTTP handler for link preview resolution.
package preview

import (
	"errors"
	"net/http"

	"linkdeck/internal/handler/http/respond"
	"linkdeck/internal/pkg/urlnorm"
	previewUC "linkdeck/internal/usecase/preview"
)

// DTO represents the JSON structure for a resolved preview. Content fields
// are nullable; clients treat null the same way regardless of whether the
// source page lacked the field or fetching failed outright.
type DTO struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	Logo        *string `json:"logo"`
	URL         string  `json:"url"`
}

type GetHandler struct{ Svc previewUC.Service }

// ServeHTTP resolves preview metadata for the url query parameter.
// Only URL validation failures produce an error status (400); once the URL
// validates, the response is always 200, degraded to the fallback shape
// when the origin could not be fetched.
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")

	result, err := h.Svc.ResolvePreview(r.Context(), rawURL)
	if err != nil {
		var vErr *urlnorm.ValidationError
		if errors.As(err, &vErr) {
			respond.JSON(w, http.StatusBadRequest, map[string]string{"error": vErr.Message})
			return
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusOK, DTO{
		Title:       result.Title,
		Description: result.Description,
		Image:       result.Image,
		Logo:        result.Logo,
		URL:         result.URL,
	})
}

// Register registers the preview resolution endpoint with the given mux.
func Register(mux *http.ServeMux, svc previewUC.Service) {
	mux.Handle("GET    /preview", GetHandler{Svc: svc})
}
