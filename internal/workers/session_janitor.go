// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anton Avdeyev

package workers

import (
	"context"
	"time"

	"github.com/avdeyev/sheetfin/internal/config"
	"github.com/avdeyev/sheetfin/internal/logger"
	"github.com/avdeyev/sheetfin/internal/service"
)

// SessionJanitor cancels recording conversations that have seen no input for
// longer than the configured inactivity window, so a user who walked away
// mid-flow gets a clean start next time.
type SessionJanitor struct {
	engine service.SessionEngine

	ttl      time.Duration
	interval time.Duration

	// notify tells the user their conversation was abandoned. Optional.
	notify func(userID int64)

	logger *logger.Logger
}

func NewSessionJanitor(engine service.SessionEngine, cfg config.Workers, notify func(userID int64), logger *logger.Logger) *SessionJanitor {
	return &SessionJanitor{
		engine:   engine,
		ttl:      cfg.SessionTTL,
		interval: cfg.SweepInterval,
		notify:   notify,
		logger:   logger,
	}
}

func (j *SessionJanitor) Run(ctx context.Context) {
	log := j.logger.GetChildLogger()
	ctx = log.WithContext(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	log.Info().Dur("ttl", j.ttl).Dur("interval", j.interval).Msg("session janitor started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("session janitor stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *SessionJanitor) sweep(ctx context.Context) {
	cancelled := j.engine.CancelStale(ctx, j.ttl)
	if j.notify == nil {
		return
	}
	for _, userID := range cancelled {
		j.notify(userID)
	}
}
