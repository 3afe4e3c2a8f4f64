package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/Aryan192003/Chatify-backend/internal/handlers"
	"github.com/Aryan192003/Chatify-backend/internal/ws"
)

func Register(app *fiber.App, userH *handlers.UserHandler, chatH *handlers.ChatHandler, wsH *ws.Handler, authn fiber.Handler) {
	api := app.Group("/api/v1")

	user := api.Group("/user")
	user.Post("/new", userH.Signup)
	user.Post("/login", userH.Login)
	user.Use(authn)
	user.Get("/me", userH.Profile)
	user.Get("/logout", userH.Logout)
	user.Get("/search", userH.Search)
	user.Put("/sendrequest", userH.SendRequest)
	user.Put("/acceptrequest", userH.AcceptRequest)
	user.Get("/notifications", userH.Notifications)
	user.Get("/friends", userH.Friends)

	chat := api.Group("/chat", authn)
	chat.Post("/new", chatH.NewGroup)
	chat.Get("/my", chatH.MyChats)
	chat.Get("/my/groups", chatH.MyGroups)
	chat.Put("/addmembers", chatH.AddMembers)
	chat.Put("/removemember", chatH.RemoveMember)
	chat.Delete("/leave/:id", chatH.LeaveGroup)
	chat.Post("/message", chatH.SendAttachments)
	chat.Get("/message/:id", chatH.Messages)
	chat.Get("/:id", chatH.ChatDetails)
	chat.Put("/:id", chatH.Rename)
	chat.Delete("/:id", chatH.DeleteChat)

	app.Use("/ws", authn, wsH.Upgrade)
	app.Get("/ws", websocket.New(wsH.Serve))
}
