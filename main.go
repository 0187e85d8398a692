package SnapDB

import (
	"log"

	"github.com/nickyhof/SnapDB/core"
	"github.com/nickyhof/SnapDB/db"
	"github.com/nickyhof/SnapDB/op"
	"github.com/nickyhof/SnapDB/ps"
)

// Instance is one open database. Every Engine created from it shares the
// same tables and persistence.
type Instance struct {
	Database    *op.Database
	Persistence *ps.Persistence
}

// Open loads the stored snapshot of persistence. A snapshot that cannot be
// read is logged and the database starts with whatever tables did load.
func Open(persistence *ps.Persistence) *Instance {
	instance := &Instance{
		Database:    op.NewDatabase(),
		Persistence: persistence,
	}

	if err := instance.Engine(core.Identity{}).Load(); err != nil {
		log.Printf("Failed to load database: %v", err)
	}
	return instance
}

func (instance *Instance) Engine(identity core.Identity) *db.Engine {
	return db.NewEngine(instance.Database, instance.Persistence, identity)
}
