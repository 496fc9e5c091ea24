package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/jkoskela/nakkikone/internal/config"
	"github.com/jkoskela/nakkikone/pkg/core/services"
	"github.com/jkoskela/nakkikone/pkg/db"
	"github.com/jkoskela/nakkikone/pkg/postgres"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg       *config.Config
	Store     db.Store
	Postgres  *postgres.DB // nil when running on the in-memory store
	Catalog   services.TaskTypeCatalog
	Directory services.VolunteerDirectory
	Logger    *zap.Logger
	Ctx       context.Context
}
