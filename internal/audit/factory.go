package audit

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	ctrl "github.com/abv-ps/shop-api/internal/audit/controller"
	svc "github.com/abv-ps/shop-api/internal/audit/service"
	"github.com/abv-ps/shop-api/internal/audit/store"
)

// Deps carries the event log store and its policy knobs.
type Deps struct {
	Conn       store.Conn
	DefaultTTL time.Duration
	Workers    int
	QueueSize  int
	Log        zerolog.Logger
}

// RegisterV1 wires the audit slice and mounts its routes. It returns the
// event logger so other slices can record events through it; the caller owns
// its Close.
func RegisterV1(g *echo.Group, d Deps) *svc.EventLogger {
	l := svc.NewEventLogger(d.Conn, d.DefaultTTL, d.Workers, d.QueueSize)
	l.SetLogger(d.Log)
	ctrl.New(l).RegisterV1(g)
	return l
}
