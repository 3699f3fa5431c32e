package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lender/app"
	"lender/apperr"
	"lender/cache"
	"lender/db"
	"lender/metrics"
)

const cacheStatsKey = cache.StatsKey

type DashboardController struct{ *Srv }

func NewDashboardController(s *Srv) *DashboardController { return &DashboardController{Srv: s} }

// Overdue runs the sweep eagerly, then lists everything past due.
func (dc *DashboardController) Overdue(c *gin.Context) {
	rows, err := dc.Repo.ListOverdueLoans(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": rows, "count": len(rows)})
}

// Stats serves the aggregate dashboard numbers, cached briefly in Redis.
func (dc *DashboardController) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	var cached db.DashboardStats
	if dc.Cache.Get(ctx, cacheStatsKey, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	s, err := dc.Repo.DashboardStats(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	dc.Cache.Set(ctx, cacheStatsKey, s, dc.Cfg.StatsCacheTTL)
	c.JSON(http.StatusOK, s)
}

// CurrentBorrows supports ?startDate=&endDate= on the borrow date.
func (dc *DashboardController) CurrentBorrows(c *gin.Context) {
	var start, end *time.Time
	var fields []apperr.FieldError

	if v := c.Query("startDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			fields = append(fields, apperr.FieldError{Field: "startDate", Message: "must be a valid RFC 3339 date"})
		} else {
			start = &t
		}
	}
	if v := c.Query("endDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			fields = append(fields, apperr.FieldError{Field: "endDate", Message: "must be a valid RFC 3339 date"})
		} else {
			end = &t
		}
	}
	if len(fields) > 0 {
		fail(c, apperr.Validation(fields))
		return
	}

	rows, err := dc.Repo.ListCurrentBorrows(c.Request.Context(), start, end)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": rows, "count": len(rows)})
}

// Notifications is the polled overdue feed.
func (dc *DashboardController) Notifications(c *gin.Context) {
	ns, err := dc.Repo.ListNotifications(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{
		"items":      ns,
		"count":      len(ns),
		"hasOverdue": len(ns) > 0,
	})
}

// Sweep triggers the overdue transition explicitly; safe to re-invoke.
func (dc *DashboardController) Sweep(c *gin.Context) {
	n, err := dc.Repo.ApplyOverdueSweep(c.Request.Context(), time.Now().UTC())
	if err != nil {
		fail(c, err)
		return
	}
	metrics.OverdueTransitionsTotal.Add(float64(n))
	c.JSON(http.StatusOK, app.H{"ok": true, "transitioned": n})
}
