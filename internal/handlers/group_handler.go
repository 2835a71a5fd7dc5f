package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"corail-backend/internal/middleware"
	"corail-backend/internal/models"
	"corail-backend/internal/validation"
)

func GroupList(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		groups, err := d.Store.ListGroups(c.Request.Context(), currentUserID(c))
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, groups)
	}
}

type createGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GroupCreate - создатель становится владельцем, код приглашения генерируется
func GroupCreate(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createGroupRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
			badRequest(c, validation.MsgGroupName)
			return
		}

		group, err := d.Store.CreateGroup(c.Request.Context(), currentUserID(c),
			strings.TrimSpace(req.Name), strings.TrimSpace(req.Description))
		if err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, group)
	}
}

// GroupGet - только для участников: состав и открытые поездки группы
func GroupGet(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		group, members, rides, err := d.Store.GetGroup(c.Request.Context(), currentUserID(c), c.Param("id"))
		if err != nil {
			d.respondError(c, err)
			return
		}

		detail := models.GroupDetail{
			Group:   *group,
			Members: make([]models.GroupMemberView, 0, len(members)),
			Rides:   toRideResponses(rides),
		}
		for _, m := range members {
			view := models.GroupMemberView{UserID: m.UserID, Role: m.Role, JoinedAt: m.JoinedAt}
			if m.User != nil {
				view.FullName = m.User.FullName
			}
			detail.Members = append(detail.Members, view)
		}
		c.JSON(http.StatusOK, detail)
	}
}

type joinGroupRequest struct {
	InviteCode string `json:"invite_code"`
}

// GroupJoin - вступление по коду; владелец получает push
func GroupJoin(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req joinGroupRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.InviteCode) == "" {
			badRequest(c, validation.MsgInviteCode)
			return
		}

		userID := currentUserID(c)
		group, err := d.Store.JoinGroup(c.Request.Context(), userID, req.InviteCode)
		if err != nil {
			d.respondError(c, err)
			return
		}

		ctx := background(c)
		memberName := ""
		if u := middleware.CurrentUser(c); u != nil {
			memberName = u.FullName
		}
		d.Notifications.GroupJoined(ctx, group.OwnerID, memberName, group)
		d.afterActivity(ctx, userID)

		c.JSON(http.StatusOK, group)
	}
}

// GroupLeave - DELETE /api/groups/:id/members/me
func GroupLeave(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := d.Store.LeaveGroup(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
			d.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Vous avez quitté le groupe"})
	}
}
