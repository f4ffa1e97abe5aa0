package handler

import (
	"net/http"

	"canedu/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/do"
)

type Config struct {
	Container *do.Injector
	Mode      string
	Origins   []string
}

func New(cfg *Config) (http.Handler, error) {
	r := echo.New()
	r.Pre(middleware.RemoveTrailingSlash())
	if cfg.Mode == "debug" {
		r.Debug = true
		pprof.Register(r)
	}

	validator, err := NewValidator()
	if err != nil {
		return nil, err
	}
	r.Validator = validator

	r.JSONSerializer = httpx.SegmentJSONSerializer{}
	r.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339}\t${method}\t${uri}\t${status}\t${latency_human}\n",
	}))
	r.Use(middleware.Recover())

	r.GET("", func(c echo.Context) error {
		return c.String(http.StatusOK, "🎓")
	})

	routesAPIv1 := r.Group("/api/v1")
	{
		authentication, err := do.Invoke[*services.Authentication](cfg.Container)
		if err != nil {
			return nil, err
		}
		cors := middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.Origins,
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			AllowCredentials: true,
			MaxAge:           60 * 60,
		})

		routesAPIv1.Use(cors)
		routesAPIv1.Use(Authn(authentication)) // Authn will NOT terminate unauthenticated request.
		routesAPIv1.GET("", Hello)

		u := groupUser{cfg.Container}
		routesAPIv1.GET("/user/me", u.Me)

		g := groupGame{cfg.Container}
		routesAPIv1.GET("/games", g.GetGames)
		routesAPIv1.GET("/games/:game", g.Show)
		routesAPIv1.GET("/games/:game/questions", g.Questions)

		routesAPIv1Progression := routesAPIv1.Group("/progression")
		{
			p := groupProgression{cfg.Container}
			routesAPIv1Progression.GET("", p.List)
			routesAPIv1Progression.GET("/:game", p.Show)
			routesAPIv1Progression.POST("/:game/stage", p.RecordStage)
			routesAPIv1Progression.GET("/:game/can-level-up", p.CanLevelUp)
			routesAPIv1Progression.POST("/:game/level-up", p.LevelUp)
		}

		routesAPIv1Stage := routesAPIv1.Group("/stage")
		{
			s := groupStage{cfg.Container}
			routesAPIv1Stage.GET("/:game", s.Current)
			routesAPIv1Stage.POST("/:game/start", s.Start)
			routesAPIv1Stage.POST("/:game/answer", s.Answer)
			routesAPIv1Stage.POST("/:game/next", s.Next)
			routesAPIv1Stage.DELETE("/:game", s.Abandon)
		}

		routesAPIv1Score := routesAPIv1.Group("/scores")
		{
			s := groupScore{cfg.Container}
			routesAPIv1Score.GET("", s.Show)
			routesAPIv1Score.POST("/answer", s.Answer)
			routesAPIv1Score.POST("/sync", s.Sync)
		}

		a := groupActivity{cfg.Container}
		routesAPIv1.GET("/activity", a.List)
		routesAPIv1.POST("/activity/log", a.Log)

		l := groupLeaderboard{cfg.Container}
		routesAPIv1.GET("/leaderboard/overall", l.GetOverallLeaderboard)
		routesAPIv1.GET("/leaderboard/weekly", l.GetWeeklyLeaderboard)

		sub := groupSubscription{cfg.Container}
		routesAPIv1.GET("/subscription/status", sub.Status)
	}

	return r, nil
}

func Hello(c echo.Context) error {
	return httpx.RestAbort(c, "hello world", nil)
}
