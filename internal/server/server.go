// Package server exposes the volume engine over HTTP: upload an archive of
// DICOM slices, then request windowed cross-sections of the assembled volume
// by session id. Images travel as base64 PNG data URLs inside JSON payloads.
package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"dicommpr/pkg/config"
	"dicommpr/pkg/session"
)

// BuildServer assembles the echo instance with all routes registered.
func BuildServer(cfg *config.Config, store *session.Store) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	switch strings.ToLower(cfg.Server.LogLevel) {
	case "debug":
		e.Logger.SetLevel(log.DEBUG)
	case "info":
		e.Logger.SetLevel(log.INFO)
	case "warn", "":
		e.Logger.SetLevel(log.WARN)
	case "error":
		e.Logger.SetLevel(log.ERROR)
	case "off":
		e.Logger.SetLevel(log.OFF)
	default:
		e.Logger.SetLevel(log.WARN)
		e.Logger.Warnf("unknown loglevel: %s, falling back to warn", cfg.Server.LogLevel)
	}

	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", cfg.Server.MaxUploadMB)))

	// logging for server-side latency.
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			meth := c.Request().Method
			path := c.Request().URL
			begin := time.Now()

			err := next(c)

			c.Logger().Infof(
				"%s %s -> status %d in %v (error = %v)",
				meth, path, c.Response().Status, time.Since(begin), err,
			)
			return err
		}
	})

	e.POST("/upload", PostUploadHandler(cfg, store))
	e.GET("/metadata/:session", GetMetadataHandler(store))
	e.GET("/slice/:session/:index", GetSliceHandler(cfg, store))
	e.GET("/views/:session", GetViewsHandler(cfg, store))
	e.GET("/mpr/:session/:axis/:index", GetMPRHandler(cfg, store))
	e.DELETE("/session/:session", DeleteSessionHandler(store))

	return e
}
