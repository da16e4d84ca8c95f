package handler

import (
	"encoding/json"
	"net/http"

	"github.com/animaweaver/chatstore/internal/api/response"
	"github.com/animaweaver/chatstore/internal/domain"
)

// GroupHandler handles group endpoints
type GroupHandler struct {
	repo domain.Repository
}

// NewGroupHandler creates a new group handler
func NewGroupHandler(repo domain.Repository) *GroupHandler {
	return &GroupHandler{repo: repo}
}

type createGroupInput struct {
	Name string `json:"name"`
}

// Create handles group creation
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input createGroupInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	group, err := h.repo.CreateGroup(r.Context(), input.Name)
	if err != nil {
		repoError(w, err)
		return
	}

	response.Created(w, group)
}

// List handles listing all groups
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.repo.GetGroups(r.Context())
	if err != nil {
		repoError(w, err)
		return
	}

	response.OK(w, groups)
}

// Get handles getting a group by ID
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		response.BadRequest(w, "invalid group ID")
		return
	}

	group, err := h.repo.GetGroup(r.Context(), groupID)
	if err != nil {
		repoError(w, err)
		return
	}

	response.OK(w, group)
}

// Chats handles listing a group's chats
func (h *GroupHandler) Chats(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		response.BadRequest(w, "invalid group ID")
		return
	}

	chats, err := h.repo.GetGroupChats(r.Context(), groupID)
	if err != nil {
		repoError(w, err)
		return
	}

	response.OK(w, chats)
}

// Delete handles deleting a group and everything under it
func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		response.BadRequest(w, "invalid group ID")
		return
	}

	if err := h.repo.DeleteGroup(r.Context(), groupID); err != nil {
		repoError(w, err)
		return
	}

	response.NoContent(w)
}

type renameGroupInput struct {
	GroupID int64  `json:"groupId" validate:"required"`
	Name    string `json:"name" validate:"required"`
}

// Rename handles the legacy flat rename endpoint
func (h *GroupHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var input renameGroupInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	group, err := h.repo.RenameGroup(r.Context(), input.GroupID, input.Name)
	if err != nil {
		repoError(w, err)
		return
	}

	response.OK(w, group)
}
