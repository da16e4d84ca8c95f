package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/animaweaver/chatstore/internal/api/response"
	"github.com/animaweaver/chatstore/internal/domain"
	"github.com/animaweaver/chatstore/internal/mode"
)

var validate = validator.New()

// ChatHandler handles chat endpoints
type ChatHandler struct {
	repo  domain.Repository
	modes *mode.Resolver
}

// NewChatHandler creates a new chat handler
func NewChatHandler(repo domain.Repository, modes *mode.Resolver) *ChatHandler {
	return &ChatHandler{repo: repo, modes: modes}
}

// repoError maps repository errors onto HTTP statuses
func repoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, domain.ErrValidation):
		response.BadRequest(w, err.Error())
	case errors.Is(err, domain.ErrSendInFlight):
		response.Conflict(w, err.Error())
	default:
		response.InternalError(w, err.Error())
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

type createChatInput struct {
	Title   string `json:"title"`
	GroupID *int64 `json:"groupId"`
}

// Create handles chat creation
func (h *ChatHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input createChatInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	chat, err := h.repo.CreateChat(r.Context(), input.Title, input.GroupID)
	if err != nil {
		repoError(w, err)
		return
	}

	response.Created(w, chat)
}

// List handles listing the user's chats, most recently updated first
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	chats, err := h.repo.GetUserChats(r.Context())
	if err != nil {
		repoError(w, err)
		return
	}

	response.OK(w, chats)
}

// Messages handles listing a chat's messages in append order
func (h *ChatHandler) Messages(w http.ResponseWriter, r *http.Request) {
	chatID, err := pathID(r, "chatID")
	if err != nil {
		response.BadRequest(w, "invalid chat ID")
		return
	}

	messages, err := h.repo.GetChatMessages(r.Context(), chatID)
	if err != nil {
		repoError(w, err)
		return
	}

	response.OK(w, messages)
}

type addMessageInput struct {
	Content string `json:"content" validate:"required"`
	Sender  string `json:"sender" validate:"omitempty,oneof=user ai"`
}

// AddMessage handles appending a user message and its AI reply
func (h *ChatHandler) AddMessage(w http.ResponseWriter, r *http.Request) {
	chatID, err := pathID(r, "chatID")
	if err != nil {
		response.BadRequest(w, "invalid chat ID")
		return
	}

	var input addMessageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	sender := domain.Sender(input.Sender)
	if sender == "" {
		sender = domain.SenderUser
	}

	pair, err := h.repo.AddMessage(r.Context(), chatID, sender, input.Content)
	if err != nil {
		repoError(w, err)
		return
	}

	response.Created(w, pair)
}

// Delete handles deleting a chat, its messages, and its mode record
func (h *ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	chatID, err := pathID(r, "chatID")
	if err != nil {
		response.BadRequest(w, "invalid chat ID")
		return
	}

	if err := h.repo.DeleteChat(r.Context(), chatID); err != nil {
		repoError(w, err)
		return
	}
	// The chat is gone either way; a stale mode record only costs a
	// default lookup later.
	if err := h.modes.Forget(chatID); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("forget chat mode failed")
	}

	response.NoContent(w)
}

type renameChatInput struct {
	ChatID int64  `json:"chatId" validate:"required"`
	Title  string `json:"title" validate:"required"`
}

// Rename handles the legacy flat rename endpoint
func (h *ChatHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var input renameChatInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	chat, err := h.repo.RenameChat(r.Context(), input.ChatID, input.Title)
	if err != nil {
		repoError(w, err)
		return
	}

	response.OK(w, chat)
}
