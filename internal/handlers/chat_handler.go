package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Aryan192003/Chatify-backend/internal/apperr"
	"github.com/Aryan192003/Chatify-backend/internal/service"
)

type ChatHandler struct {
	chats    *service.ChatService
	messages *service.MessageService
}

func NewChatHandler(chats *service.ChatService, messages *service.MessageService) *ChatHandler {
	return &ChatHandler{chats: chats, messages: messages}
}

func (h *ChatHandler) NewGroup(c *fiber.Ctx) error {
	var body struct {
		Name    string   `json:"name"`
		Members []string `json:"members"`
	}
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}
	if _, err := h.chats.CreateGroup(c.Context(), body.Name, body.Members, currentUser(c)); err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusCreated, fiber.Map{"message": "Group created"})
}

func (h *ChatHandler) MyChats(c *fiber.Ctx) error {
	chats, err := h.chats.GetMyChats(c.Context(), currentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"chats": chats})
}

func (h *ChatHandler) MyGroups(c *fiber.Ctx) error {
	groups, err := h.chats.GetMyGroups(c.Context(), currentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"groups": groups})
}

func (h *ChatHandler) AddMembers(c *fiber.Ctx) error {
	var body struct {
		ChatID  string   `json:"chatId"`
		Members []string `json:"members"`
	}
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}
	if err := h.chats.AddMembers(c.Context(), body.ChatID, body.Members, currentUser(c)); err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"message": "Members added successfully"})
}

func (h *ChatHandler) RemoveMember(c *fiber.Ctx) error {
	var body struct {
		ChatID string `json:"chatId"`
		UserID string `json:"userId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}
	if err := h.chats.RemoveMember(c.Context(), body.ChatID, body.UserID, currentUser(c)); err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"message": "Member removed successfully"})
}

func (h *ChatHandler) LeaveGroup(c *fiber.Ctx) error {
	if err := h.chats.LeaveGroup(c.Context(), c.Params("id"), currentUser(c)); err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"message": "Group left successfully"})
}

func (h *ChatHandler) SendAttachments(c *fiber.Ctx) error {
	chatID := c.FormValue("chatId")
	form, err := c.MultipartForm()
	if err != nil {
		return respondError(c, apperr.Validation("please provide attachments"))
	}
	var files []service.File
	for _, fh := range form.File["files"] {
		f, err := readFile(fh)
		if err != nil {
			return respondError(c, err)
		}
		files = append(files, *f)
	}

	msg, err := h.messages.SendAttachments(c.Context(), chatID, currentUser(c), files)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"message": msg})
}

func (h *ChatHandler) ChatDetails(c *fiber.Ctx) error {
	populate := c.Query("populate") == "true"
	details, err := h.chats.GetChatDetails(c.Context(), c.Params("id"), populate)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"chat": details})
}

func (h *ChatHandler) Rename(c *fiber.Ctx) error {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, apperr.Validation("invalid request body"))
	}
	if err := h.chats.RenameGroup(c.Context(), c.Params("id"), body.Name, currentUser(c)); err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"message": "Group name changed successfully"})
}

func (h *ChatHandler) DeleteChat(c *fiber.Ctx) error {
	if err := h.messages.DeleteChat(c.Context(), c.Params("id"), currentUser(c)); err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"message": "Chat deleted successfully"})
}

func (h *ChatHandler) Messages(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	msgs, totalPages, err := h.messages.FetchHistory(c.Context(), c.Params("id"), page)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"messages": msgs, "totalPages": totalPages})
}
