package handler

import (
	appforum "github.com/felicity/backend/internal/application/forum"
	"github.com/gin-gonic/gin"
)

// ForumHandler handles an event's discussion board
type ForumHandler struct {
	BaseHandler
	forumService *appforum.ForumService
}

// NewForumHandler creates a new forum handler
func NewForumHandler(forumService *appforum.ForumService) *ForumHandler {
	return &ForumHandler{forumService: forumService}
}

type pageQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// PostMessage posts a message or a reply to the event's board
func (h *ForumHandler) PostMessage(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	eventID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid event ID")
		return
	}

	var req appforum.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	msg, err := h.forumService.PostMessage(c.Request.Context(), userID, eventID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, msg)
}

// ListMessages returns the board's top-level messages, pinned first
func (h *ForumHandler) ListMessages(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	eventID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid event ID")
		return
	}

	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.forumService.ListMessages(c.Request.Context(), userID, eventID, q.Page, q.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Messages, result.Total, result.Page, result.PageSize)
}

// ListReplies returns the replies of one message
func (h *ForumHandler) ListReplies(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	messageID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid message ID")
		return
	}

	replies, err := h.forumService.ListReplies(c.Request.Context(), userID, messageID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, replies)
}

// React toggles the caller's reaction on a message
func (h *ForumHandler) React(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	messageID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid message ID")
		return
	}

	var req appforum.ReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	msg, err := h.forumService.React(c.Request.Context(), userID, messageID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, msg)
}

// TogglePin pins or unpins a message. Organizer of the event only.
func (h *ForumHandler) TogglePin(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	messageID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid message ID")
		return
	}

	msg, err := h.forumService.TogglePin(c.Request.Context(), userID, messageID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, msg)
}

// DeleteMessage soft-deletes a message. Author or moderator only.
func (h *ForumHandler) DeleteMessage(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	messageID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid message ID")
		return
	}

	if err := h.forumService.DeleteMessage(c.Request.Context(), userID, messageID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
