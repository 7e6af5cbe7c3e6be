package main

import (
	"context"
	"fmt"
	"strings"

	"ai-meetnotes/internal/bootstrap"
	"ai-meetnotes/internal/config"
	"ai-meetnotes/internal/pkg/logger"
	"ai-meetnotes/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// env is one process-local instance of the backend.
type env struct {
	c      *bootstrap.Container
	userId uuid.UUID
	cancel context.CancelFunc
}

func setup(ctx context.Context) (*env, error) {
	userId, err := uuid.Parse(flagUser)
	if err != nil {
		return nil, fmt.Errorf("--user must be a uuid: %w", err)
	}

	cfg := config.Load()
	db, err := database.NewGormDB(cfg.Database.Driver, cfg.Database.Connection)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	opts := bootstrap.Options{Logger: logger.NewNopLogger()}
	if flagVerbose {
		opts.Logger = logger.NewZapLogger(cfg.App.LogFilePath, false)
	}
	c, err := bootstrap.NewContainer(db, cfg, opts)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := c.Start(runCtx); err != nil {
		cancel()
		c.Close()
		return nil, err
	}
	return &env{c: c, userId: userId, cancel: cancel}, nil
}

func (e *env) close() {
	e.cancel()
	e.c.Close()
}

func sessionArg(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("session id must be a uuid: %w", err)
	}
	return id, nil
}

// deltaPrinter prints only what a cumulative snapshot adds to the last one.
type deltaPrinter struct {
	last string
	out  *color.Color
}

func (p *deltaPrinter) print(snapshot string) {
	if strings.HasPrefix(snapshot, p.last) {
		p.out.Print(snapshot[len(p.last):])
	} else {
		p.out.Print("\n" + snapshot)
	}
	p.last = snapshot
}
