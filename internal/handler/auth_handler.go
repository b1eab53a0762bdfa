package handler

import (
	"net/http"

	"github.com/collegecms/internal/locale"
	"github.com/collegecms/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	sessionUserKey = "user_id"
	currentUserKey = "__current_user"
)

type loginPayload struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 校验账号密码并写入会话
func (a *API) Login(c *gin.Context) {
	var req loginPayload
	if !bindJSON(c, &req) {
		return
	}

	user, err := a.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Logout 清空会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": locale.Message(requestLanguage(c), "logged_out")})
}

// Me 返回当前登录用户
func (a *API) Me(c *gin.Context) {
	user, ok := a.currentUser(c)
	if !ok {
		respondMessage(c, http.StatusForbidden, kindForbidden, "not_authenticated", nil)
		return
	}
	c.JSON(http.StatusOK, user)
}

// StaffRequired lets safe methods through and requires a staff session for
// everything else.
func (a *API) StaffRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		user, ok := a.currentUser(c)
		if !ok {
			respondMessage(c, http.StatusForbidden, kindForbidden, "not_authenticated", nil)
			c.Abort()
			return
		}
		if !user.IsStaff {
			respondMessage(c, http.StatusForbidden, kindForbidden, "forbidden", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (a *API) currentUser(c *gin.Context) (*service.UserView, bool) {
	if cached, exists := c.Get(currentUserKey); exists {
		if user, ok := cached.(*service.UserView); ok {
			return user, true
		}
	}

	session := sessions.Default(c)
	id, ok := session.Get(sessionUserKey).(uint)
	if !ok || id == 0 {
		return nil, false
	}
	user, err := a.users.Get(c.Request.Context(), id)
	if err != nil {
		return nil, false
	}
	c.Set(currentUserKey, user)
	return user, true
}
