package api

import (
	"doorbell/internal/store"
)

// Handler holds shared dependencies for the lister's handlers.
type Handler struct {
	store store.Store
}

// NewHandler creates a new lister handler.
func NewHandler(s store.Store) *Handler {
	return &Handler{store: s}
}
