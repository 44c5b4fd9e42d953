package echoapi

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/elearn360/backend/core/project"
)

type projectApi struct {
	svc      project.Service
	reporter ProjectReporter
	validate *validator.Validate
}

func registerProjectAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc project.Service,
	reporter ProjectReporter,
	validate *validator.Validate,
) {
	api := projectApi{svc: svc, reporter: reporter, validate: validate}

	pg := g.Group("/projects", jwt)
	pg.GET("", api.query)
	pg.POST("", api.create, reviewerMiddleware())
	pg.GET("/:id", api.detail)
	pg.PATCH("/:id", api.update, reviewerMiddleware())
	pg.DELETE("/:id", api.destroy, reviewerMiddleware())
	pg.GET("/:id/report", api.report)
}

// Handlers

func (api *projectApi) query(ctx echo.Context) error {
	filter := new(project.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []project.Overview{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	prjs, err := api.svc.Query(filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying projects")
	}
	if prjs == nil {
		prjs = []project.Overview{}
	}
	return ctx.JSON(http.StatusOK, prjs)
}

func (api *projectApi) create(ctx echo.Context) error {
	var data project.NewProject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProject")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	res, err := api.svc.Create(data, claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *projectApi) detail(ctx echo.Context) error {
	det, err := api.svc.Detail(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, det)
}

func (api *projectApi) update(ctx echo.Context) error {
	var data project.UpdateProject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProject")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	prj, err := api.svc.Update(ctx.Param("id"), data, claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, prj)
}

func (api *projectApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *projectApi) report(ctx echo.Context) error {
	det, err := api.svc.Detail(ctx.Param("id"))
	if err != nil {
		return err
	}

	pdf, err := api.reporter.ProjectReport(det)
	if err != nil {
		return errors.Wrap(err, "rendering project report")
	}

	ctx.Response().Header().Set(
		echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="proyecto-%s.pdf"`, det.Project.ID),
	)
	return ctx.Blob(http.StatusOK, "application/pdf", pdf)
}
