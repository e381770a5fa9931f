package controller

import (
	"book_platform_backend/internal/service"
	"book_platform_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	DashboardService *service.DashboardService
	RBACService      *service.RBACService
}

func NewAdminController(dashboardService *service.DashboardService, rbacService *service.RBACService) *AdminController {
	return &AdminController{
		DashboardService: dashboardService,
		RBACService:      rbacService,
	}
}

// Dashboard godoc
// @Summary Admin analytics dashboard
// @Description Per-user progress summaries and per-chapter statistics
// @Description across all users
// @Tags admin
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.AdminDashboard} "Success"
// @Failure 401 {object} util.Response "Unauthorized"
// @Failure 403 {object} util.Response "Forbidden"
// @Router /api/admin/dashboard [get]
func (c *AdminController) Dashboard(ctx *gin.Context) {
	dashboard, err := c.DashboardService.GetAdminDashboard()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, dashboard)
}

// swagger:model AssignRoleRequest
type AssignRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// AssignRole godoc
// @Summary Assign a role to a user
// @Description Idempotent; assigning a role the user already holds reports
// @Description changed=false
// @Tags admin
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "User ID"
// @Param   body body AssignRoleRequest true "Role name"
// @Success 200 {object} util.Response{data=object} "Success"
// @Failure 404 {object} util.Response "Role or user not found"
// @Router /api/admin/users/{id}/roles [post]
func (c *AdminController) AssignRole(ctx *gin.Context) {
	var req AssignRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	userID := util.MustParseUint(ctx.Param("id"))
	changed, err := c.RBACService.AssignRole(userID, req.Role)
	if err != nil {
		if errors.Is(err, util.ErrRoleNotFound) || errors.Is(err, util.ErrUserNotFound) {
			util.Error(ctx, 404, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"changed": changed})
}

// RemoveRole godoc
// @Summary Remove a role from a user
// @Description Idempotent; removing a role the user does not hold reports
// @Description changed=false
// @Tags admin
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "User ID"
// @Param   role path string true "Role name"
// @Success 200 {object} util.Response{data=object} "Success"
// @Failure 404 {object} util.Response "Role or user not found"
// @Router /api/admin/users/{id}/roles/{role} [delete]
func (c *AdminController) RemoveRole(ctx *gin.Context) {
	userID := util.MustParseUint(ctx.Param("id"))
	changed, err := c.RBACService.RemoveRole(userID, ctx.Param("role"))
	if err != nil {
		if errors.Is(err, util.ErrRoleNotFound) || errors.Is(err, util.ErrUserNotFound) {
			util.Error(ctx, 404, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"changed": changed})
}
