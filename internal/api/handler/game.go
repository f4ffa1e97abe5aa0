package handler

import (
	"errors"
	"strconv"

	"canedu/internal/models"
	"canedu/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupGame struct {
	container *do.Injector
}

func (gr *groupGame) GetGames(c echo.Context) error {
	serviceGame, err := do.Invoke[*services.ServiceGame](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	games, err := serviceGame.GetGames(c.Request().Context(), models.Domain(c.QueryParam("domain")))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, games, nil)
}

func (gr *groupGame) Show(c echo.Context) error {
	serviceGame, err := do.Invoke[*services.ServiceGame](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	game, err := serviceGame.GetGame(c.Request().Context(), c.Param("game"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, game, nil)
}

func (gr *groupGame) Questions(c echo.Context) error {
	serviceGame, err := do.Invoke[*services.ServiceGame](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	serviceQuestion, err := do.Invoke[*services.ServiceQuestion](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	level, err := strconv.Atoi(c.QueryParam("level"))
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("invalid level"), errorx.Validation))
	}

	ctx := c.Request().Context()
	game, err := serviceGame.GetGame(ctx, c.Param("game"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	questions, err := serviceQuestion.GetLevelQuestions(ctx, game, level)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, questions, nil)
}
