// Package cli holds the beoctl operator commands.
package cli

import (
	"fmt"

	"github.com/fatih/color"
	"gorm.io/gorm"

	"beo-inventory-backend/config"
	"beo-inventory-backend/internal/db"
)

// Env is what every command needs: the loaded configuration and a way to
// reach the database.
type Env struct {
	Config *config.Config
	Open   func() (*gorm.DB, error)
}

// NewEnv opens the configured database lazily.
func NewEnv(cfg *config.Config) *Env {
	return &Env{
		Config: cfg,
		Open: func() (*gorm.DB, error) {
			return db.Open(&cfg.Database)
		},
	}
}

func (e *Env) open() (*gorm.DB, error) {
	gormDB, err := e.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return gormDB, nil
}

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	badColor  = color.New(color.FgRed)
	dimColor  = color.New(color.Faint)
)
