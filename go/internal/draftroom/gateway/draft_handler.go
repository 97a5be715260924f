package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/blitzdraft/go/internal/draftroom/engine"
	"github.com/mcdev12/blitzdraft/go/internal/draftroom/room"
	"github.com/mcdev12/blitzdraft/go/internal/models"
)

// BoardFactory produces a fresh randomized board for a new draft.
type BoardFactory func() (models.Board, error)

// DraftHandler exposes the HTTP surface for creating draft rooms. The
// contest service calls it when a lobby fills (or its fill timer fires).
type DraftHandler struct {
	rooms    Rooms
	newBoard BoardFactory
}

// NewDraftHandler creates the draft HTTP handler.
func NewDraftHandler(rooms Rooms, newBoard BoardFactory) *DraftHandler {
	return &DraftHandler{rooms: rooms, newBoard: newBoard}
}

type startDraftParticipant struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type startDraftRequest struct {
	ContestID    string                  `json:"contest_id"`
	ContestType  models.ContestType      `json:"contest_type"`
	Participants []startDraftParticipant `json:"participants"`
}

type startDraftResponse struct {
	RoomID string             `json:"room_id"`
	State  *models.DraftState `json:"state"`
}

// HandleStartDraft creates a room for a contest, filling empty seats with
// bots, and returns the initial state snapshot.
func (h *DraftHandler) HandleStartDraft(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req startDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ContestID == "" {
		http.Error(w, "contest_id is required", http.StatusBadRequest)
		return
	}
	switch req.ContestType {
	case models.ContestTypeCash, models.ContestTypeKingpin, models.ContestTypeFiresale:
	default:
		http.Error(w, "unknown contest_type", http.StatusBadRequest)
		return
	}

	participants := make([]engine.Participant, 0, len(req.Participants))
	for _, p := range req.Participants {
		if p.ID == "" {
			http.Error(w, "participant id is required", http.StatusBadRequest)
			return
		}
		name := p.DisplayName
		if name == "" {
			name = p.ID
		}
		participants = append(participants, engine.Participant{
			ID:          p.ID,
			DisplayName: name,
			IsHuman:     true,
		})
	}

	b, err := h.newBoard()
	if err != nil {
		log.Error().Err(err).Str("contest_id", req.ContestID).Msg("failed to generate draft board")
		http.Error(w, "failed to generate board", http.StatusInternalServerError)
		return
	}

	state, err := h.rooms.StartDraft(r.Context(), room.StartRequest{
		ContestID:    req.ContestID,
		ContestType:  req.ContestType,
		Participants: participants,
		Board:        b,
	})
	if err != nil {
		if verr, ok := engine.AsValidation(err); ok {
			http.Error(w, verr.Message, http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Str("contest_id", req.ContestID).Msg("failed to start draft")
		http.Error(w, "failed to start draft", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(startDraftResponse{
		RoomID: state.RoomID,
		State:  state,
	})
}

// RegisterRoutes registers draft HTTP routes with an HTTP mux.
func (h *DraftHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/drafts/start", h.HandleStartDraft)
}
