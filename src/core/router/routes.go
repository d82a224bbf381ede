package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"

	"vibely/src/core/middleware"
	"vibely/src/modules/authentication"
	connection "vibely/src/modules/connections"
	"vibely/src/modules/feed"
	"vibely/src/modules/messages"
	"vibely/src/modules/notifications"
	"vibely/src/modules/posts"
	"vibely/src/modules/stories"
	"vibely/src/modules/users"
)

func InitialiseAndSetupRoutes(app *fiber.App) {
	root := app.Group("/", logger.New())

	root.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	apiV1 := root.Group("/api/v1")
	setupAPIV1Routes(apiV1)
	setupWebSocketRoutes(root)
}

func setupAPIV1Routes(router fiber.Router) {
	// Grouped API endpoints
	authGroup := router.Group("/auth")
	userGroup := router.Group("/users")
	postGroup := router.Group("/posts")
	feedGroup := router.Group("/feed")
	storyGroup := router.Group("/stories")
	notificationGroup := router.Group("/notifications")
	messageGroup := router.Group("/messages")

	// Authentication routes
	authGroup.Post("/signup", authentication.SignUp)
	authGroup.Post("/signin", authentication.SignIn)

	// User routes
	userGroup.Get("/search", middleware.Protected(), users.SearchUsers)
	userGroup.Get("/suggested", middleware.Protected(), users.GetSuggestedUsers)
	userGroup.Put("/update-profile", middleware.Protected(), users.UpdateProfile)
	userGroup.Put("/change-password", middleware.Protected(), users.ChangePassword)
	userGroup.Post("/upload-profile-photo", middleware.Protected(), users.UploadProfilePhoto)
	userGroup.Get("/profile/:username", middleware.Protected(), users.GetProfile)

	// Follow graph routes
	userGroup.Get("/requests", middleware.Protected(), connection.GetPendingRequests)
	userGroup.Post("/:user_id/follow", middleware.Protected(), connection.Follow)
	userGroup.Put("/:user_id/toggle-private", middleware.Protected(), users.TogglePrivate)
	userGroup.Post("/:user_id/accept-request", middleware.Protected(), connection.AcceptRequest)
	userGroup.Post("/:user_id/decline-request", middleware.Protected(), connection.DeclineRequest)
	userGroup.Get("/:user_id/followers", middleware.Protected(), connection.GetFollowers)
	userGroup.Get("/:user_id/following", middleware.Protected(), connection.GetFollowing)
	userGroup.Get("/:user_id/posts", middleware.Protected(), posts.GetUserPosts)
	userGroup.Get("/:user_id/stories", middleware.Protected(), stories.GetStoriesByUser)

	// Post routes
	postGroup.Post("/", middleware.Protected(), posts.CreatePost)
	postGroup.Get("/archived", middleware.Protected(), posts.GetArchivedPosts)
	postGroup.Get("/bookmarked", middleware.Protected(), posts.GetBookmarkedPosts)
	postGroup.Get("/:id", middleware.Protected(), posts.GetPostByID)
	postGroup.Delete("/:id", middleware.Protected(), posts.RemovePost)
	postGroup.Post("/:id/like", middleware.Protected(), posts.LikePost)
	postGroup.Post("/:id/comment", middleware.Protected(), posts.CommentPost)
	postGroup.Delete("/:post_id/comment/:comment_id", middleware.Protected(), posts.RemoveComment)
	postGroup.Post("/:id/bookmark", middleware.Protected(), posts.BookmarkPost)
	postGroup.Put("/:id/archive", middleware.Protected(), posts.ArchivePost)
	postGroup.Put("/:id/restore", middleware.Protected(), posts.RestorePost)

	// Feed routes
	feedGroup.Get("/", middleware.Protected(), feed.FetchFeed)

	// Story routes
	storyGroup.Post("/", middleware.Protected(), stories.CreateStory)
	storyGroup.Get("/", middleware.Protected(), stories.GetStories)
	storyGroup.Get("/archived", middleware.Protected(), stories.GetArchivedStories)
	storyGroup.Get("/:id", middleware.Protected(), stories.GetStory)
	storyGroup.Delete("/:id", middleware.Protected(), stories.DeleteStory)

	// Notification routes
	notificationGroup.Get("/", middleware.Protected(), notifications.GetNotifications)
	notificationGroup.Put("/:notification_id/read", middleware.Protected(), notifications.MarkAsRead)
	notificationGroup.Post("/:notification_id/accept", middleware.Protected(), connection.AcceptRequestNotification)
	notificationGroup.Post("/:notification_id/decline", middleware.Protected(), connection.DeclineRequestNotification)

	// Message routes
	messageGroup.Get("/", middleware.Protected(), messages.GetConversations)
	messageGroup.Get("/unread-count", middleware.Protected(), messages.GetUnreadCount)
	messageGroup.Post("/:user_id", middleware.Protected(), messages.SendMessage)
	messageGroup.Get("/:user_id", middleware.Protected(), messages.GetConversation)
	messageGroup.Put("/:user_id/read", middleware.Protected(), messages.MarkAsRead)
}

func setupWebSocketRoutes(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/ws/notifications", middleware.Protected(), websocket.New(notifications.WebSocketHandler))
}
