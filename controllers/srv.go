package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"lender/app"
	"lender/apperr"
	"lender/cache"
	"lender/config"
	"lender/db"
)

type Srv struct {
	Repo  *db.Repo
	Cache *cache.Cache
	Cfg   config.Config
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Repo:  db.NewRepo(a.DB),
		Cache: cache.New(a.RDB),
		Cfg:   a.Config,
	}
}

// fail maps the error taxonomy onto HTTP. Expected kinds pass the message
// through; internal errors are logged with context and masked.
func fail(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		c.JSON(http.StatusBadRequest, app.H{
			"error":   err.Error(),
			"kind":    apperr.KindValidation,
			"details": apperr.FieldsOf(err),
		})
	case apperr.KindNotFound:
		c.JSON(http.StatusNotFound, app.H{"error": err.Error(), "kind": apperr.KindNotFound})
	case apperr.KindConflict:
		c.JSON(http.StatusConflict, app.H{"error": err.Error(), "kind": apperr.KindConflict})
	default:
		slog.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal server error", "kind": apperr.KindInternal})
	}
}
