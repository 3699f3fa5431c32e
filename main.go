package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"lender/app"
	"lender/cache"
	"lender/config"
	"lender/db"
	"lender/metrics"
	"lender/routes"
)

func main() {
	config.LoadEnv()

	application := app.MustNew()
	defer application.Close()

	r := application.Router

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })

	routes.RegisterRoutes(r, application)

	go runOverdueSweep(application)

	port := application.Config.Port
	log.Printf("listening on :%s", port)
	_ = r.Run(":" + port)
}

// runOverdueSweep is the periodic trigger for the active→overdue
// transition. Reads catch lapsed loans lazily anyway; the ticker just keeps
// the stored statuses from drifting when nobody is looking. The Redis lock
// lets multiple instances share the schedule.
func runOverdueSweep(a *app.App) {
	interval := a.Config.SweepInterval
	if interval <= 0 {
		return
	}

	repo := db.NewRepo(a.DB)
	cc := cache.New(a.RDB)

	t := time.NewTicker(interval)
	defer t.Stop()
	for range t.C {
		if !cc.TryLock(context.Background(), cache.SweepLockKey, interval/2) {
			continue
		}
		n, err := repo.ApplyOverdueSweep(context.Background(), time.Now().UTC())
		if err != nil {
			slog.Error("overdue sweep failed", "err", err)
			continue
		}
		if n > 0 {
			metrics.OverdueTransitionsTotal.Add(float64(n))
			slog.Info("overdue sweep", "transitioned", n)
		}
	}
}
