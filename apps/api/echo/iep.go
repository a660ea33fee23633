package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/iep"
)

type iepApi struct {
	svc iep.Service
}

func registerIepAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc iep.Service) {
	api := iepApi{svc: svc}

	ig := g.Group("/iep", jwt)
	ig.POST("/drafts", api.createDraft)
	ig.GET("/drafts/:id", api.retrieveDraft)
	ig.PUT("/drafts/:id", api.updateDraft)
	ig.POST("/drafts/:id/goals", api.saveGoal)
	ig.POST("/generate-goal", api.generateGoal)
	ig.POST("/service-logs", api.createServiceLog)
	ig.GET("/students/:id/drafts", api.queryDrafts)
	ig.GET("/students/:id/service-logs", api.queryServiceLogs)
}

// Handlers

func (api *iepApi) createDraft(ctx echo.Context) error {
	var data iep.NewDraft
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDraft")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	draft, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating draft")
	}
	return ctx.JSON(http.StatusCreated, draft)
}

func (api *iepApi) retrieveDraft(ctx echo.Context) error {
	draft, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, draft)
}

func (api *iepApi) updateDraft(ctx echo.Context) error {
	var data iep.UpdateDraft
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateDraft")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	draft, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, draft)
}

func (api *iepApi) saveGoal(ctx echo.Context) error {
	var data iep.SaveGoalRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SaveGoalRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	draft, err := api.svc.SaveGeneratedGoal(ctx.Request().Context(), ctx.Param("id"), data.Goal)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, draft)
}

func (api *iepApi) generateGoal(ctx echo.Context) error {
	var data iep.GenerateGoalRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GenerateGoalRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	goal, err := api.svc.GenerateGoal(ctx.Request().Context(), data.PresentLevels)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, GeneratedGoalResponse{Goal: goal})
}

func (api *iepApi) createServiceLog(ctx echo.Context) error {
	var data iep.NewServiceLog
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewServiceLog")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	slog, err := api.svc.LogService(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording service log")
	}
	return ctx.JSON(http.StatusCreated, slog)
}

func (api *iepApi) queryDrafts(ctx echo.Context) error {
	drafts, err := api.svc.QueryByStudent(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying drafts")
	}
	if drafts == nil {
		drafts = []iep.Draft{}
	}
	return ctx.JSON(http.StatusOK, drafts)
}

func (api *iepApi) queryServiceLogs(ctx echo.Context) error {
	logs, err := api.svc.QueryServiceLogs(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying service logs")
	}
	if logs == nil {
		logs = []iep.ServiceLog{}
	}
	return ctx.JSON(http.StatusOK, logs)
}

type GeneratedGoalResponse struct {
	Goal string `json:"goal"`
}
