package controller

import (
	"exam_portal_backend/internal/service"
	"exam_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	NotificationService *service.NotificationService
}

func NewNotificationController(notificationService *service.NotificationService) *NotificationController {
	return &NotificationController{NotificationService: notificationService}
}

// @Summary 通知列表
// @Tags 通知
// @Security BearerAuth
// @Produce json
// @Param unread query bool false "只看未读"
// @Success 200 {object} util.Response
// @Router /api/notifications [get]
func (c *NotificationController) List(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	page, limit := pageParams(ctx)
	ns, total, err := c.NotificationService.List(user.UserID, ctx.Query("unread") == "true", page, limit)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: ns, Total: int64(total), Page: page, Limit: limit})
}

// @Summary 未读数量
// @Tags 通知
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/notifications/unread-count [get]
func (c *NotificationController) UnreadCount(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	count, err := c.NotificationService.CountUnread(user.UserID)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"count": count})
}

// @Summary 标记已读
// @Tags 通知
// @Security BearerAuth
// @Param id path string true "通知ID"
// @Success 200 {object} util.Response
// @Router /api/notifications/{id}/read [post]
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id := ctx.Param("id")
	if id == "" {
		util.BadRequest(ctx, "invalid id")
		return
	}
	if err := c.NotificationService.MarkRead(id, user.UserID); err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 全部标记已读
// @Tags 通知
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/notifications/read-all [post]
func (c *NotificationController) MarkAllRead(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	if err := c.NotificationService.MarkAllRead(user.UserID); err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
