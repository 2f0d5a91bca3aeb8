package session

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/abv-ps/shop-api/internal/platform/ratelimit"
	ctrl "github.com/abv-ps/shop-api/internal/session/controller"
	"github.com/abv-ps/shop-api/internal/session/domain"
	svc "github.com/abv-ps/shop-api/internal/session/service"
)

// Deps carries the shared clients the session slice builds on.
type Deps struct {
	Redis  *redis.Client
	TTL    time.Duration
	Events svc.Recorder
	Log    zerolog.Logger
}

// RegisterV1 wires the session slice and mounts its routes. It returns the
// manager so other slices (token resolution in the shop handlers) can share it.
func RegisterV1(g *echo.Group, d Deps) domain.Manager {
	m := svc.NewManager(d.Redis, d.TTL, d.Events)
	m.SetLogger(d.Log)
	c := ctrl.New(m).WithRateLimitStore(ratelimit.NewRedisStore(d.Redis))
	c.RegisterV1(g)
	return m
}
