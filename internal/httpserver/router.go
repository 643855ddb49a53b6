package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/videotube/internal/db"
	"github.com/Skotchmaster/videotube/internal/middleware/auth"
)

type Deps struct {
	DB             *gorm.DB
	AuthHandler    *AuthHTTP
	ChannelHandler *ChannelHTTP
	Verifier       auth.Authenticator
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if err := db.Ping(c.Request().Context(), d.DB); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	requireUser := auth.RequireUser(d.Verifier)
	api := e.Group("/api/v1")

	users := api.Group("/users")
	users.POST("/register", d.AuthHandler.Register)
	users.POST("/login", d.AuthHandler.Login)
	users.POST("/refresh-token", d.AuthHandler.Refresh)

	private := users.Group("", requireUser)
	private.POST("/logout", d.AuthHandler.Logout)
	private.POST("/change-password", d.AuthHandler.ChangePassword)
	private.GET("/current-user", d.AuthHandler.CurrentUser)
	private.PATCH("/update-account", d.AuthHandler.UpdateAccount)
	private.PATCH("/avatar", d.AuthHandler.UpdateAvatar)
	private.PATCH("/cover-image", d.AuthHandler.UpdateCoverImage)
	private.GET("/c/:username", d.ChannelHandler.Profile)
	private.GET("/history", d.ChannelHandler.History)

	subs := api.Group("/subscriptions", requireUser)
	subs.POST("/c/:channelId", d.ChannelHandler.Subscribe)
	subs.DELETE("/c/:channelId", d.ChannelHandler.Unsubscribe)

	videos := api.Group("/videos", requireUser)
	videos.POST("/:videoId/watch", d.ChannelHandler.RecordWatch)

	comments := api.Group("/comments", requireUser)
	comments.POST("/:parentModel/:parentId", d.ChannelHandler.AddComment)
	comments.GET("/:parentModel/:parentId", d.ChannelHandler.ListComments)

	likes := api.Group("/likes", requireUser)
	likes.POST("/toggle/:likedModel/:likedId", d.ChannelHandler.ToggleLike)

	api.GET("/channels/search", d.ChannelHandler.Search)
}
