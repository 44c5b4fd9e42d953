package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/elearn360/backend/core/catalog"
	"github.com/elearn360/backend/core/notif"
	"github.com/elearn360/backend/core/project"
	"github.com/elearn360/backend/core/user"
)

type dashboardApi struct {
	projectSvc project.Service
	userSvc    user.Service
	catalogSvc catalog.Service
	notifSvc   notif.Service
}

func registerDashboardAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	projectSvc project.Service,
	userSvc user.Service,
	catalogSvc catalog.Service,
	notifSvc notif.Service,
) {
	api := dashboardApi{
		projectSvc: projectSvc,
		userSvc:    userSvc,
		catalogSvc: catalogSvc,
		notifSvc:   notifSvc,
	}

	g.GET("/dashboard/stats", api.stats, jwt)
	g.GET("/admin/stats", api.adminStats, jwt, adminMiddleware())
}

type (
	DashboardStats struct {
		project.Stats
		UnreadNotifications int `json:"unread_notifications"`
	}

	AdminStats struct {
		Users       int `json:"users"`
		Projects    int `json:"projects"`
		Tasks       int `json:"tasks"`
		Modules     int `json:"modules"`
		Departments int `json:"departments"`
		Roles       int `json:"roles"`
	}
)

// Handlers

func (api *dashboardApi) stats(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	stats, err := api.projectSvc.Stats(claims.Subject)
	if err != nil {
		return errors.Wrap(err, "computing project stats")
	}

	unread, err := api.notifSvc.CountUnread(claims.Subject)
	if err != nil {
		return errors.Wrap(err, "counting unread notifications")
	}

	return ctx.JSON(http.StatusOK, DashboardStats{Stats: stats, UnreadNotifications: unread})
}

func (api *dashboardApi) adminStats(ctx echo.Context) error {
	users, err := api.userSvc.Count()
	if err != nil {
		return errors.Wrap(err, "counting users")
	}
	projects, err := api.projectSvc.Count()
	if err != nil {
		return errors.Wrap(err, "counting projects")
	}
	tasks, err := api.projectSvc.CountTasks()
	if err != nil {
		return errors.Wrap(err, "counting tasks")
	}
	depts, err := api.userSvc.QueryDepartments()
	if err != nil {
		return errors.Wrap(err, "querying departments")
	}

	var modules int
	if cat, err := api.catalogSvc.Current(); err == nil {
		modules = len(cat.Modules)
	} else if errors.Cause(err) != catalog.ErrNotFound {
		return errors.Wrap(err, "getting current catalog")
	}

	return ctx.JSON(http.StatusOK, AdminStats{
		Users:       users,
		Projects:    projects,
		Tasks:       tasks,
		Modules:     modules,
		Departments: len(depts),
		Roles:       len(api.userSvc.QueryRoles()),
	})
}
