package routes

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lipish/postloop/internal/config"
	"github.com/lipish/postloop/internal/entity"
	"github.com/lipish/postloop/internal/execute"
	"github.com/lipish/postloop/internal/githook"
	"github.com/lipish/postloop/internal/history"
	"github.com/lipish/postloop/internal/pipeline"
	"github.com/lipish/postloop/internal/versions"
	"github.com/samber/do"
	"github.com/samber/lo"
)

func RegisterAPI(injector *do.Injector, e *echo.Echo, app *config.Config) {
	api := e.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	api.GET("/versions", func(c echo.Context) error {
		store := do.MustInvoke[versions.Store](injector)
		vs, err := store.List()
		if err != nil {
			return c.NoContent(http.StatusInternalServerError)
		}
		current, _, err := store.Current()
		if err != nil {
			return c.NoContent(http.StatusInternalServerError)
		}

		type version struct {
			Label     string `json:"label"`
			CreatedAt string `json:"created_at"`
			Current   bool   `json:"current"`
		}
		type response struct {
			Versions []version `json:"versions"`
		}
		res := &response{Versions: lo.Map(vs, func(v versions.Version, _ int) version {
			return version{
				Label:     v.Label,
				CreatedAt: v.CreatedAt.UTC().Format(time.RFC3339),
				Current:   v.Label == current,
			}
		})}
		return c.JSON(http.StatusOK, res)
	})

	api.GET("/deployments", func(c echo.Context) error {
		store := do.MustInvoke[history.Store](injector)
		deps, err := store.ListRecent(c.Request().Context(), 50)
		if err != nil {
			return c.NoContent(http.StatusInternalServerError)
		}

		type response struct {
			Deployments []*entity.Deployment `json:"deployments"`
		}
		return c.JSON(http.StatusOK, &response{Deployments: deps})
	})

	api.POST("/deploy", func(c echo.Context) error {
		ctx := c.Request().Context()

		commit, err := githook.ShortHash(ctx, execute.Runner{}, app.Watch.RepoPath)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}

		p := do.MustInvoke[*pipeline.Pipeline](injector)
		result := p.Run(ctx, commit)

		type response struct {
			Commit       string `json:"commit"`
			Success      bool   `json:"success"`
			FailedStage  string `json:"failed_stage,omitempty"`
			RolledBackTo string `json:"rolled_back_to,omitempty"`
			Error        string `json:"error,omitempty"`
		}
		res := &response{
			Commit:       result.Commit,
			Success:      result.OK(),
			FailedStage:  string(result.FailedStage),
			RolledBackTo: result.RolledBackTo,
		}
		if result.Err != nil {
			res.Error = result.Err.Error()
			return c.JSON(http.StatusInternalServerError, res)
		}
		return c.JSON(http.StatusOK, res)
	})
}
