package link

import (
	"encoding/json"
	"errors"
	"net/http"

	"linkdeck/internal/domain/entity"
	"linkdeck/internal/handler/http/pathutil"
	"linkdeck/internal/handler/http/respond"
	"linkdeck/internal/pkg/urlnorm"
	linkUC "linkdeck/internal/usecase/link"
)

type CreateHandler struct{ Svc *linkUC.Service }

// ServeHTTP creates a new link on a profile. The response returns
// immediately; preview resolution for icon-less links happens in the
// background after the link already exists.
func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	profileID, err := pathutil.ParseID(r.PathValue("profileID"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Title    string `json:"title"`
		URL      string `json:"url"`
		Icon     string `json:"icon"`
		Position int    `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	created, err := h.Svc.Create(r.Context(), linkUC.CreateInput{
		ProfileID: profileID,
		Title:     req.Title,
		URL:       req.URL,
		Icon:      req.Icon,
		Position:  req.Position,
	})
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}

	respond.JSON(w, http.StatusCreated, toDTO(created))
}

// statusFor maps use case and validation errors onto HTTP status codes.
func statusFor(err error) int {
	var vErr *urlnorm.ValidationError
	var fieldErr *entity.ValidationError
	switch {
	case errors.As(err, &vErr), errors.As(err, &fieldErr):
		return http.StatusBadRequest
	case errors.Is(err, linkUC.ErrInvalidLinkID), errors.Is(err, linkUC.ErrInvalidProfileID):
		return http.StatusBadRequest
	case errors.Is(err, linkUC.ErrLinkNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
