package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/elearn360/backend/core/project"
)

type taskApi struct {
	svc      project.Service
	validate *validator.Validate
}

func registerTaskAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc project.Service, validate *validator.Validate) {
	api := taskApi{svc: svc, validate: validate}

	pg := g.Group("/projects/:id/tasks", jwt)
	pg.GET("", api.projectTasks)
	pg.POST("", api.create, reviewerMiddleware())

	tg := g.Group("/tasks", jwt)
	tg.GET("", api.query)
	tg.GET("/:id", api.retrieve)
	// status and assignment changes are open to collaborators working the task
	tg.PATCH("/:id", api.update)
	tg.DELETE("/:id", api.destroy, reviewerMiddleware())

	tg.POST("/:id/checklist", api.addChecklistItem)
	tg.PATCH("/:id/checklist/:itemID", api.toggleChecklistItem)
	tg.DELETE("/:id/checklist/:itemID", api.removeChecklistItem)
}

// Handlers

func (api *taskApi) projectTasks(ctx echo.Context) error {
	tasks, err := api.svc.ProjectTasks(ctx.Param("id"))
	if err != nil {
		return err
	}
	if tasks == nil {
		tasks = []project.Task{}
	}
	return ctx.JSON(http.StatusOK, tasks)
}

func (api *taskApi) create(ctx echo.Context) error {
	var data project.NewTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTask")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	tsk, err := api.svc.AddTask(ctx.Param("id"), data, claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, tsk)
}

func (api *taskApi) query(ctx echo.Context) error {
	filter := new(project.TaskFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []project.Task{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	tasks, err := api.svc.QueryTasks(filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying tasks")
	}
	if tasks == nil {
		tasks = []project.Task{}
	}
	return ctx.JSON(http.StatusOK, tasks)
}

func (api *taskApi) retrieve(ctx echo.Context) error {
	tsk, err := api.svc.GetTask(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tsk)
}

func (api *taskApi) update(ctx echo.Context) error {
	var data project.UpdateTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTask")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	tsk, err := api.svc.UpdateTask(ctx.Param("id"), data, claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tsk)
}

func (api *taskApi) destroy(ctx echo.Context) error {
	if err := api.svc.DeleteTask(ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Checklist

func (api *taskApi) addChecklistItem(ctx echo.Context) error {
	var data project.NewChecklistItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewChecklistItem")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	item, err := api.svc.AddChecklistItem(ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, item)
}

func (api *taskApi) toggleChecklistItem(ctx echo.Context) error {
	item, err := api.svc.ToggleChecklistItem(ctx.Param("id"), ctx.Param("itemID"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *taskApi) removeChecklistItem(ctx echo.Context) error {
	if err := api.svc.RemoveChecklistItem(ctx.Param("id"), ctx.Param("itemID")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
