package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/videotube/internal/apperr"
	"github.com/Skotchmaster/videotube/internal/middleware/auth"
	"github.com/Skotchmaster/videotube/internal/service"
	"github.com/Skotchmaster/videotube/internal/transport"
	"github.com/Skotchmaster/videotube/internal/util"
)

type ChannelHTTP struct {
	Svc *service.ChannelService
}

func (h *ChannelHTTP) Profile(c echo.Context) error {
	user, err := auth.UserFrom(c)
	if err != nil {
		return err
	}
	profile, err := h.Svc.Profile(c.Request().Context(), c.Param("username"), user.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, profile, "User channel fetched successfully")
}

func (h *ChannelHTTP) History(c echo.Context) error {
	user, err := auth.UserFrom(c)
	if err != nil {
		return err
	}
	history, err := h.Svc.History(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, history, "Watch history fetched successfully")
}

func (h *ChannelHTTP) Subscribe(c echo.Context) error {
	user, channelID, err := userAndID(c, "channelId")
	if err != nil {
		return err
	}
	if err := h.Svc.Subscribe(c.Request().Context(), user, channelID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"subscribed": true}, "Subscribed successfully")
}

func (h *ChannelHTTP) Unsubscribe(c echo.Context) error {
	user, channelID, err := userAndID(c, "channelId")
	if err != nil {
		return err
	}
	if err := h.Svc.Unsubscribe(c.Request().Context(), user, channelID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"subscribed": false}, "Unsubscribed successfully")
}

func (h *ChannelHTTP) RecordWatch(c echo.Context) error {
	user, videoID, err := userAndID(c, "videoId")
	if err != nil {
		return err
	}
	if err := h.Svc.RecordWatch(c.Request().Context(), user, videoID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil, "Watch recorded")
}

func (h *ChannelHTTP) AddComment(c echo.Context) error {
	user, parentID, err := userAndID(c, "parentId")
	if err != nil {
		return err
	}

	var req transport.CommentRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid body")
	}
	in, err := req.Validate(c.Param("parentModel"))
	if err != nil {
		return err
	}

	comment, err := h.Svc.AddComment(c.Request().Context(), user, parentID, in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, comment, "Comment added successfully")
}

func (h *ChannelHTTP) ListComments(c echo.Context) error {
	model, err := transport.ParseParentModel(c.Param("parentModel"))
	if err != nil {
		return err
	}
	parentID, err := pathID(c, "parentId")
	if err != nil {
		return err
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	result, err := h.Svc.Comments(c.Request().Context(), model, parentID, page, size)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, result, "Comments fetched successfully")
}

func (h *ChannelHTTP) ToggleLike(c echo.Context) error {
	user, likedID, err := userAndID(c, "likedId")
	if err != nil {
		return err
	}
	model, err := transport.ParseParentModel(c.Param("likedModel"))
	if err != nil {
		return err
	}

	liked, err := h.Svc.ToggleLike(c.Request().Context(), user, model, likedID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, echo.Map{"liked": liked}, "Like toggled")
}

func (h *ChannelHTTP) Search(c echo.Context) error {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	result, err := h.Svc.SearchChannels(c.Request().Context(), c.QueryParam("q"), page, size)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, result, "Channels fetched successfully")
}

func pathID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid " + name)
	}
	return id, nil
}

func userAndID(c echo.Context, name string) (uuid.UUID, uuid.UUID, error) {
	user, err := auth.UserFrom(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	id, err := pathID(c, name)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return user.ID, id, nil
}
