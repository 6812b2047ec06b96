package main

import (
	"context"
	"fmt"

	"github.com/dkeye/Meet/internal/adapters/store/gormstore"
	"github.com/dkeye/Meet/internal/adapters/store/memstore"
	"github.com/dkeye/Meet/internal/config"
	"github.com/dkeye/Meet/internal/core"
	"github.com/rs/zerolog/log"
)

type store interface {
	core.RoomStore
	core.UserStore
}

// openStore returns the configured store and a close func.
func openStore(ctx context.Context, cfg config.StoreConfig, migrate bool) (store, func(), error) {
	if cfg.Driver == "memory" {
		log.Warn().Msg("using in-memory store; data is lost on restart")
		return memstore.New(), func() {}, nil
	}
	db, err := gormstore.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	s := gormstore.New(db)
	closeFn := func() {
		if err := s.Close(); err != nil {
			log.Error().Err(err).Msg("store close")
		}
	}
	if err := s.Ping(ctx); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("store ping: %w", err)
	}
	if migrate {
		if err := gormstore.Migrate(db); err != nil {
			closeFn()
			return nil, nil, err
		}
	}
	return s, closeFn, nil
}
