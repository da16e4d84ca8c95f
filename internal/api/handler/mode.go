package handler

import (
	"encoding/json"
	"net/http"

	"github.com/animaweaver/chatstore/internal/api/response"
	"github.com/animaweaver/chatstore/internal/domain"
	"github.com/animaweaver/chatstore/internal/mode"
)

// ModeHandler handles the chat-mode side table and the prompt catalog
type ModeHandler struct {
	modes *mode.Resolver
}

// NewModeHandler creates a new mode handler
func NewModeHandler(modes *mode.Resolver) *ModeHandler {
	return &ModeHandler{modes: modes}
}

// Get returns the chat's mode, teaching when none was recorded
func (h *ModeHandler) Get(w http.ResponseWriter, r *http.Request) {
	chatID, err := pathID(r, "chatID")
	if err != nil {
		response.BadRequest(w, "invalid chat ID")
		return
	}

	response.OK(w, map[string]any{
		"chatId": chatID,
		"mode":   h.modes.Resolve(chatID),
	})
}

type assignModeInput struct {
	Mode string `json:"mode" validate:"required,oneof=marketing teaching"`
}

// Assign records the chat's mode
func (h *ModeHandler) Assign(w http.ResponseWriter, r *http.Request) {
	chatID, err := pathID(r, "chatID")
	if err != nil {
		response.BadRequest(w, "invalid chat ID")
		return
	}

	var input assignModeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	if err := h.modes.Assign(chatID, domain.Mode(input.Mode)); err != nil {
		repoError(w, err)
		return
	}

	response.OK(w, map[string]any{
		"chatId": chatID,
		"mode":   domain.Mode(input.Mode),
	})
}

// Prompts returns the prebuilt prompt catalog filtered by mode
func (h *ModeHandler) Prompts(w http.ResponseWriter, r *http.Request) {
	m := domain.Mode(r.URL.Query().Get("mode"))
	if m == "" {
		m = domain.DefaultMode
	}
	if !m.Valid() {
		response.BadRequest(w, "unknown mode")
		return
	}

	prompts := h.modes.Prompts(m)
	if prompts == nil {
		prompts = []mode.Prompt{}
	}
	response.OK(w, prompts)
}
