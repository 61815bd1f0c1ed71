package link

import (
	"net/http"

	linkUC "linkdeck/internal/usecase/link"
)

// Register registers all link-related HTTP handlers with the given mux.
// Profile-scoped routes operate on a profile's whole link set; item routes
// address a single link by ID.
func Register(mux *http.ServeMux, svc *linkUC.Service) {
	mux.Handle("GET    /profiles/{profileID}/links", ListHandler{svc})
	mux.Handle("POST   /profiles/{profileID}/links", CreateHandler{svc})
	mux.Handle("PUT    /profiles/{profileID}/links", ReplaceHandler{svc})

	mux.Handle("PATCH  /links/{id}", UpdateHandler{svc})
	mux.Handle("DELETE /links/{id}", DeleteHandler{svc})
}
