package handler

import (
	"errors"
	"net/http"

	"canedu/internal/models"
	"canedu/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupScore struct {
	container *do.Injector
}

func (gr *groupScore) Show(c echo.Context) error {
	serviceScore, err := do.Invoke[*services.ServiceScore](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	ctx := c.Request().Context()
	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	score, err := serviceScore.GetScores(ctx, user.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, score, nil)
}

func (gr *groupScore) Answer(c echo.Context) error {
	var payload models.AnswerRecord
	if err := bindValid(c, &payload); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceScore, err := do.Invoke[*services.ServiceScore](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	ctx := c.Request().Context()
	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	result, err := serviceScore.RecordAnswer(ctx, user.ID, payload)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, result, nil)
}

// Sync answers a stale snapshot with 409 and the stored snapshot so the
// client can rebase.
func (gr *groupScore) Sync(c echo.Context) error {
	var payload models.ScoreSync
	if err := bindValid(c, &payload); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceScore, err := do.Invoke[*services.ServiceScore](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	ctx := c.Request().Context()
	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	score, err := serviceScore.SyncScores(ctx, user.ID, &payload)
	var conflict *services.SyncConflictError
	if errors.As(err, &conflict) {
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"error": conflict.Error(),
			"data":  conflict.Current,
		})
	}
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, score, nil)
}
