package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/elearn360/backend/core"
	"github.com/elearn360/backend/core/project"
)

type deliverableApi struct {
	svc      project.Service
	validate *validator.Validate
}

func registerDeliverableAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc project.Service, validate *validator.Validate) {
	api := deliverableApi{svc: svc, validate: validate}

	g.POST("/tasks/:id/deliverables", api.create, jwt, reviewerMiddleware())

	dg := g.Group("/deliverables", jwt)
	dg.PATCH("/:id", api.update, reviewerMiddleware())
	dg.DELETE("/:id", api.destroy, reviewerMiddleware())
	dg.POST("/:id/upload", api.upload)
	dg.POST("/:id/submit", api.submit)
	dg.POST("/:id/review", api.review, reviewerMiddleware())
}

// Handlers

func (api *deliverableApi) create(ctx echo.Context) error {
	var data project.NewDeliverable
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDeliverable")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	dlv, err := api.svc.AddDeliverable(ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, dlv)
}

func (api *deliverableApi) update(ctx echo.Context) error {
	var data project.UpdateDeliverable
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateDeliverable")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	dlv, err := api.svc.UpdateDeliverable(ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, dlv)
}

func (api *deliverableApi) destroy(ctx echo.Context) error {
	if err := api.svc.DeleteDeliverable(ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// upload receives a multipart file under the "file" field. Uploading always
// resets the review: the deliverable goes back to pending with feedback and
// reviewer cleared.
func (api *deliverableApi) upload(ctx echo.Context) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "this field is required"})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer src.Close()

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	up := project.FileUpload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get(echo.HeaderContentType),
		Size:        fileHeader.Size,
		Content:     src,
	}
	dlv, err := api.svc.UploadDeliverableFile(ctx.Param("id"), up, claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, dlv)
}

func (api *deliverableApi) submit(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	dlv, err := api.svc.SubmitDeliverable(ctx.Param("id"), claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, dlv)
}

func (api *deliverableApi) review(ctx echo.Context) error {
	var data project.ReviewInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReviewInput")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	dlv, err := api.svc.ReviewDeliverable(ctx.Param("id"), data, claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, dlv)
}
