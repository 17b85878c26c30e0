package query

import (
	"github.com/tair/storefront/internal/session/domain"
)

// GetSessionQuery represents the query for the current session state
type GetSessionQuery struct{}

// GetSessionHandler handles the get session query
type GetSessionHandler struct {
	manager domain.SessionManager
}

// NewGetSessionHandler creates a new get session handler
func NewGetSessionHandler(manager domain.SessionManager) *GetSessionHandler {
	return &GetSessionHandler{manager: manager}
}

// Handle executes the get session query
func (h *GetSessionHandler) Handle(_ GetSessionQuery) domain.Snapshot {
	return h.manager.Snapshot()
}
