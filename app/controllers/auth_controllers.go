package controllers

import (
	"github.com/shashiranjanraj/shopease/app/services"
	"github.com/shashiranjanraj/shopease/pkg/ctx"
	"github.com/shashiranjanraj/shopease/pkg/logger"
	"github.com/shashiranjanraj/shopease/pkg/session"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

func (ctl *AuthController) Register(c *ctx.Context) {
	var in services.RegisterInput
	if !c.BindJSON(&in) {
		return
	}
	res, err := ctl.auth.Register(c.Context(), in)
	if err != nil {
		fail(c, err, "Registration failed")
		return
	}
	c.Created("Registered", res)
}

// Login merges the session's guest cart into the user's cart, then rotates
// the session id.
func (ctl *AuthController) Login(c *ctx.Context) {
	var in services.LoginInput
	if !c.BindJSON(&in) {
		return
	}

	guest := ""
	sess := session.FromCtx(c.R)
	if sess != nil && !sess.IsNew() {
		guest = services.GuestCart(sess.ID())
	}

	res, err := ctl.auth.Login(c.Context(), in, guest)
	if err != nil {
		fail(c, err, "Login failed")
		return
	}

	if sess != nil && !sess.IsNew() {
		if err := sess.Regenerate(); err == nil {
			if err := sess.Save(c.Context(), c.W); err != nil {
				logger.WithCtx(c.Context()).Warn("login: session save failed", "error", err)
			}
		}
	}
	c.Message("Logged in", res)
}

func (ctl *AuthController) Refresh(c *ctx.Context) {
	var in struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}
	if !c.BindJSON(&in) {
		return
	}
	res, err := ctl.auth.Refresh(c.Context(), in.RefreshToken)
	if err != nil {
		fail(c, err, "Refresh failed")
		return
	}
	c.Success(res)
}

func (ctl *AuthController) Profile(c *ctx.Context) {
	u, err := ctl.auth.Profile(c.Context(), c.UserID())
	if err != nil {
		fail(c, err, "Fetch failed")
		return
	}
	c.Success(u)
}

func (ctl *AuthController) UpdateProfile(c *ctx.Context) {
	var in services.ProfileInput
	if !c.BindJSON(&in) {
		return
	}
	u, err := ctl.auth.UpdateProfile(c.Context(), c.UserID(), in)
	if err != nil {
		fail(c, err, "Update failed")
		return
	}
	c.Message("Profile updated", u)
}
