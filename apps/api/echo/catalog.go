package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/elearn360/backend/core"
	"github.com/elearn360/backend/core/catalog"
)

type catalogApi struct {
	svc      catalog.Service
	validate *validator.Validate
}

func registerCatalogAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc catalog.Service, validate *validator.Validate) {
	api := catalogApi{svc: svc, validate: validate}

	cg := g.Group("/catalog", jwt)
	cg.GET("", api.current)
	cg.GET("/versions/:version", api.version)

	// catalog writes publish a new version; admin only
	mg := cg.Group("/modules", adminMiddleware())
	mg.POST("", api.createModule)
	mg.PATCH("/:id", api.updateModule)
	mg.DELETE("/:id", api.destroyModule)
	mg.POST("/:id/tasks", api.addTaskTemplate)
	mg.PATCH("/:id/tasks/:tmplID", api.updateTaskTemplate)
	mg.DELETE("/:id/tasks/:tmplID", api.removeTaskTemplate)
}

// Handlers

func (api *catalogApi) current(ctx echo.Context) error {
	cat, err := api.svc.Current()
	if err != nil {
		return errors.Wrap(err, "getting current catalog")
	}
	return ctx.JSON(http.StatusOK, cat)
}

func (api *catalogApi) version(ctx echo.Context) error {
	version, err := strconv.Atoi(ctx.Param("version"))
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "version", Error: "must be an integer"})
	}

	cat, err := api.svc.Version(version)
	if err != nil {
		return errors.Wrap(err, "getting catalog version")
	}
	return ctx.JSON(http.StatusOK, cat)
}

func (api *catalogApi) createModule(ctx echo.Context) error {
	var data catalog.NewModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewModule")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	mod, err := api.svc.CreateModule(data, claims.Subject)
	if err != nil {
		return errors.Wrap(err, "creating module")
	}
	return ctx.JSON(http.StatusCreated, mod)
}

func (api *catalogApi) updateModule(ctx echo.Context) error {
	var data catalog.UpdateModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateModule")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	mod, err := api.svc.UpdateModule(ctx.Param("id"), data, claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, mod)
}

func (api *catalogApi) destroyModule(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.DeleteModule(ctx.Param("id"), claims.Subject); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *catalogApi) addTaskTemplate(ctx echo.Context) error {
	var data catalog.NewTaskTemplate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTaskTemplate")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	tmpl, err := api.svc.AddTaskTemplate(ctx.Param("id"), data, claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, tmpl)
}

func (api *catalogApi) updateTaskTemplate(ctx echo.Context) error {
	var data catalog.UpdateTaskTemplate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTaskTemplate")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	tmpl, err := api.svc.UpdateTaskTemplate(ctx.Param("id"), ctx.Param("tmplID"), data, claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tmpl)
}

func (api *catalogApi) removeTaskTemplate(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.RemoveTaskTemplate(ctx.Param("id"), ctx.Param("tmplID"), claims.Subject); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
