// Package httpapi serves the journal to a local UI as JSON over HTTP.
//
// Every mutation answers with the stored record as soon as the local write
// commits; the cloud mirror runs behind it and never changes the response.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dailygrace/dailygrace/internal/client/app"
	"github.com/dailygrace/dailygrace/internal/client/client"
	"github.com/dailygrace/dailygrace/internal/client/models"
	"github.com/dailygrace/dailygrace/internal/common"
	"github.com/dailygrace/dailygrace/internal/logging"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type Server struct {
	app    *app.App
	log    logging.Logger
	engine *gin.Engine
}

func New(a *app.App) *Server {
	s := &Server{app: a, log: a.Log.With("component", "httpapi")}

	e := gin.New()
	e.Use(gin.Recovery(), requestLogger(s.log))
	if a.Config.RateLimit > 0 {
		limiters := newLimiterSet(rate.Limit(a.Config.RateLimit), a.Config.RateBurst)
		e.Use(rateLimit(limiters, func(c *gin.Context) string { return c.ClientIP() }))
	}

	api := e.Group("/api")
	mount[models.MeditationNote, models.MeditationPatch](api, "/meditation", a.Meditations)
	mount[models.PrayerNote, models.PrayerPatch](api, "/prayer", a.Prayers)
	mount[models.GratitudeNote, models.GratitudePatch](api, "/gratitude", a.Gratitudes)
	mount[models.Diary, models.DiaryPatch](api, "/diary", a.Diaries)
	mount[models.CustomRecord, models.RecordPatch](api, "/records", a.Records)
	mount[models.Category, models.CategoryPatch](api, "/categories", a.Categories)

	api.GET("/feed", s.feed)
	api.GET("/feed/custom", s.customFeed)
	api.GET("/feed/date/:date", s.feedOnDate)
	api.GET("/feed/search", s.search)
	api.GET("/goal/today", s.goal)
	api.GET("/streak", s.streak)

	api.GET("/cards", s.listCards)
	api.POST("/cards", s.saveCard)
	api.DELETE("/cards/:id", s.deleteCard)

	api.GET("/session", s.session)
	api.POST("/session/login", s.login)
	api.POST("/session/cancel", s.cancelLogin)
	api.POST("/session/logout", s.logout)
	api.DELETE("/session/account", s.deleteAccount)

	s.engine = e
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

// Run listens on addr until ctx is cancelled, then drains in-flight
// requests for up to five seconds.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// status maps domain errors onto HTTP status codes.
func status(err error) int {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrDuplicateName),
		errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, common.ErrCategoryLimit):
		return http.StatusUnprocessableEntity
	case errors.Is(err, common.ErrBuiltinCategory):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrorInvalidLoginPassword):
		return http.StatusUnauthorized
	case errors.Is(err, client.ErrOffline),
		errors.Is(err, common.ErrorUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// fail writes err as a JSON error. Unexpected errors are attached to the
// context for the request logger and hidden from the client.
func fail(c *gin.Context, err error) {
	code := status(err)
	if code == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(code, gin.H{"error": "internal error"})
		return
	}
	c.JSON(code, gin.H{"error": err.Error()})
}
