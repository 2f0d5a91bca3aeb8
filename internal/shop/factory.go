package shop

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	sessdomain "github.com/abv-ps/shop-api/internal/session/domain"
	ctrl "github.com/abv-ps/shop-api/internal/shop/controller"
	repo "github.com/abv-ps/shop-api/internal/shop/repository"
	svc "github.com/abv-ps/shop-api/internal/shop/service"
)

// Deps carries the shared clients the shop slice builds on.
type Deps struct {
	Mongo    *mongo.Database
	Sessions sessdomain.Manager
	Events   svc.Recorder
	Log      zerolog.Logger
}

// RegisterV1 wires the shop slice and mounts its routes. It returns the
// repository so startup can ensure indexes.
func RegisterV1(g *echo.Group, d Deps) *repo.Repo {
	r := repo.New(d.Mongo)
	s := svc.New(r, d.Events)
	s.SetLogger(d.Log)
	ctrl.New(s, d.Sessions).RegisterV1(g)
	return r
}
