package link

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"linkdeck/internal/handler/http/pathutil"
	"linkdeck/internal/handler/http/respond"
	linkUC "linkdeck/internal/usecase/link"
)

// maxReplaceBatch bounds how many links one replace request may submit.
const maxReplaceBatch = 100

type ReplaceHandler struct{ Svc *linkUC.Service }

// ServeHTTP swaps a profile's entire link set for the submitted one.
// Validation covers the whole batch before anything is written, so a
// single bad entry rejects the request with 400 and changes nothing.
func (h ReplaceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	profileID, err := pathutil.ParseID(r.PathValue("profileID"))
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Links []struct {
			Title    string `json:"title"`
			URL      string `json:"url"`
			Icon     string `json:"icon"`
			Position int    `json:"position"`
		} `json:"links"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if len(req.Links) > maxReplaceBatch {
		respond.SafeError(w, http.StatusBadRequest,
			fmt.Errorf("at most %d links allowed, got %d", maxReplaceBatch, len(req.Links)))
		return
	}
	if len(req.Links) == 0 {
		respond.SafeError(w, http.StatusBadRequest, errors.New("links are required"))
		return
	}

	inputs := make([]linkUC.CreateInput, len(req.Links))
	for i, l := range req.Links {
		inputs[i] = linkUC.CreateInput{
			ProfileID: profileID,
			Title:     l.Title,
			URL:       l.URL,
			Icon:      l.Icon,
			Position:  l.Position,
		}
	}

	replaced, err := h.Svc.Replace(r.Context(), profileID, inputs)
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}

	respond.JSON(w, http.StatusOK, toDTOs(replaced))
}
