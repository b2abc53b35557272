// Package frontend serves the embedded assist form page.
package frontend

import (
	"io/fs"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/qiwen/shopguide/internal/profile"
)

type FrontendService struct {
	Profile *profile.Profile
}

func NewFrontendService(profile *profile.Profile) *FrontendService {
	return &FrontendService{
		Profile: profile,
	}
}

func (*FrontendService) Serve(e *echo.Echo) {
	skipper := func(c echo.Context) bool {
		// Skip API, metrics and health routes.
		switch c.Path() {
		case "/script", "/healthz", "/metrics":
			return true
		}
		if len(c.Path()) >= 5 && c.Path()[:5] == "/api/" {
			return true
		}

		c.Response().Header().Set("X-Content-Type-Options", "nosniff")
		return false
	}

	dist, err := fs.Sub(embeddedFiles, "dist")
	if err != nil {
		// embed is resolved at compile time; a missing dist dir is a build error.
		panic(err)
	}

	e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
		Skipper:    skipper,
		HTML5:      true,
		Filesystem: http.FS(dist),
	}))
}
