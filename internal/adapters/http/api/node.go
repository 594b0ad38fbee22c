// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/runindex/runindex/internal/domain/model"
	"github.com/runindex/runindex/pkg/extid"
)

// NodeHandler resolves external tokens to the rows they name.
type NodeHandler struct {
	deps Dependencies
}

// NewNodeHandler creates a new node handler.
func NewNodeHandler(deps Dependencies) *NodeHandler {
	return &NodeHandler{deps: deps}
}

// nodeResponse wraps a resolved row with its kind discriminator.
type nodeResponse struct {
	Kind string `json:"kind"`
	Node any    `json:"node"`
}

// HandleGetNode handles GET /node/{token} requests.
func (h *NodeHandler) HandleGetNode(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_node"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	// Extract path parameter after /node/
	tok := strings.TrimPrefix(r.URL.Path, "/node/")
	if tok == "" || strings.Contains(tok, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	kind, row, err := h.deps.Node(r.Context(), tok)
	if err != nil {
		// A token that does not decode is a client error, not a lookup miss.
		if errors.Is(err, extid.ErrBadToken) || errors.Is(err, extid.ErrUnknownKind) || errors.Is(err, extid.ErrZeroID) {
			writeError(w, http.StatusBadRequest, "bad_token", Wrap(op, err))
			return
		}
		writeLookupError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, nodeResponse{Kind: kind, Node: viewOf(row)})
}

// viewOf converts a raw row into its external shape so numeric IDs stay
// inside the process.
func viewOf(row any) any {
	switch row := row.(type) {
	case model.Game:
		return newGameView(row)
	case model.Category:
		return newCategoryView(row)
	case model.Level:
		return newLevelView(row)
	case model.User:
		return newUserView(row)
	case model.Run:
		return newRunView(row)
	default:
		return row
	}
}
