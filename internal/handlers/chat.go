package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelierhq/atelier-api/internal/dto"
	apierrors "github.com/atelierhq/atelier-api/internal/errors"
	"github.com/atelierhq/atelier-api/internal/middleware"
	"github.com/atelierhq/atelier-api/internal/services"
)

// ChatHandler coordinates project channel and direct message HTTP handlers.
type ChatHandler struct {
	chatService *services.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// sendMessageRequest is shared by the project channel and direct chat.
type sendMessageRequest struct {
	Message     string `json:"message" binding:"required"`
	MessageType string `json:"message_type"`
	FileName    string `json:"file_name"`
	FileSize    *int64 `json:"file_size"`
	FileType    string `json:"file_type"`
}

func (r *sendMessageRequest) toInput() services.SendMessageInput {
	return services.SendMessageInput{
		Message:     r.Message,
		MessageType: r.MessageType,
		FileName:    r.FileName,
		FileSize:    r.FileSize,
		FileType:    r.FileType,
	}
}

// ProjectMessages returns a project's channel history.
func (h *ChatHandler) ProjectMessages(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	messages, err := h.chatService.ProjectMessages(actor, projectID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	messageDTOs := make([]dto.ChatMessageDTO, len(messages))
	for i, message := range messages {
		messageDTOs[i] = dto.ToChatMessageDTO(message)
	}
	c.JSON(http.StatusOK, gin.H{
		"messages": messageDTOs,
	})
}

// SendProjectMessage posts a message to a project's channel.
func (h *ChatHandler) SendProjectMessage(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	message, err := h.chatService.SendProjectMessage(actor, projectID, req.toInput())
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToChatMessageDTO(*message))
}

// DirectMessages returns the caller's thread with another account.
func (h *ChatHandler) DirectMessages(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	otherID, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	messages, err := h.chatService.DirectMessages(actor, otherID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	messageDTOs := make([]dto.DirectMessageDTO, len(messages))
	for i, message := range messages {
		messageDTOs[i] = dto.ToDirectMessageDTO(message)
	}
	c.JSON(http.StatusOK, gin.H{
		"messages": messageDTOs,
	})
}

// SendDirectMessage sends a message to another account.
func (h *ChatHandler) SendDirectMessage(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	recipientID, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	message, err := h.chatService.SendDirectMessage(actor, recipientID, req.toInput())
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToDirectMessageDTO(*message))
}

// Conversations returns the caller's direct chat threads, most recently
// active first.
func (h *ChatHandler) Conversations(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	conversations, err := h.chatService.Conversations(actor)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	conversationDTOs := make([]dto.ConversationDTO, len(conversations))
	for i, conversation := range conversations {
		conversationDTOs[i] = dto.ToConversationDTO(conversation)
	}
	c.JSON(http.StatusOK, gin.H{
		"conversations": conversationDTOs,
	})
}
