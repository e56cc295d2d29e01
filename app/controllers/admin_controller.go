package controllers

import (
	"github.com/shashiranjanraj/shopease/app/services"
	"github.com/shashiranjanraj/shopease/pkg/ctx"
	"github.com/shashiranjanraj/shopease/pkg/ws"
)

type AdminController struct {
	dashboard *services.DashboardService
	hub       *ws.Hub
}

func NewAdminController(dashboard *services.DashboardService, hub *ws.Hub) *AdminController {
	return &AdminController{dashboard: dashboard, hub: hub}
}

func (ctl *AdminController) Stats(c *ctx.Context) {
	stats, err := ctl.dashboard.Stats(c.Context())
	if err != nil {
		fail(c, err, "Fetch failed")
		return
	}
	c.Success(stats)
}

// Feed upgrades to the live order WebSocket.
func (ctl *AdminController) Feed(c *ctx.Context) {
	ws.Upgrade(c.W, c.R, ctl.hub)
}
