package app

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"lender/config"
	"lender/db"
)

// aliases so handlers stay short
type Ctx = gin.Context
type H = gin.H

// App aggregates the shared dependencies.
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	Config config.Config
}

func MustNew() *App {
	cfg := config.Load()

	dbConn := db.ConnectDB()

	r := gin.Default()
	useCORS(r, cfg.WebOrigin)

	return &App{Router: r, DB: dbConn, RDB: newRedisClient(cfg), Config: cfg}
}

// newRedisClient returns nil when Redis is unreachable. Redis is the
// read-side cache and sweep coordinator; nothing of record lives there, so a
// missing Redis only costs cache hits.
func newRedisClient(cfg config.Config) *redis.Client {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("redis unavailable, running uncached: %v", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}

func (a *App) Close() {
	if a.RDB != nil {
		_ = a.RDB.Close()
	}
}
