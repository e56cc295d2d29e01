package controllers

import (
	"github.com/shashiranjanraj/shopease/app/services"
	"github.com/shashiranjanraj/shopease/pkg/ctx"
)

// UserController is the admin user back-office.
type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

func (ctl *UserController) Index(c *ctx.Context) {
	page, err := c.QueryInt("page", 1)
	if err != nil {
		badQuery(c, err)
		return
	}
	limit, err := c.QueryInt("limit", 20)
	if err != nil {
		badQuery(c, err)
		return
	}
	res, err := ctl.users.List(c.Context(), page, limit)
	if err != nil {
		fail(c, err, "Fetch failed")
		return
	}
	c.Paginated(res.Items, res.Pagination)
}

func (ctl *UserController) Show(c *ctx.Context) {
	u, err := ctl.users.Get(c.Context(), c.Param("id"))
	if err != nil {
		fail(c, err, "Fetch failed")
		return
	}
	c.Success(u)
}

func (ctl *UserController) Update(c *ctx.Context) {
	var in services.AdminUserInput
	if !c.BindJSON(&in) {
		return
	}
	u, err := ctl.users.Update(c.Context(), c.UserID(), c.Param("id"), in)
	if err != nil {
		fail(c, err, "Update failed")
		return
	}
	c.Message("User updated", u)
}

func (ctl *UserController) Destroy(c *ctx.Context) {
	if err := ctl.users.Delete(c.Context(), c.UserID(), c.Param("id")); err != nil {
		fail(c, err, "Delete failed")
		return
	}
	c.Message("Deleted", nil)
}
