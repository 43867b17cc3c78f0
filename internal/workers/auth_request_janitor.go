// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anton Avdeyev

package workers

import (
	"context"
	"time"

	"github.com/avdeyev/sheetfin/internal/config"
	"github.com/avdeyev/sheetfin/internal/logger"
	"github.com/avdeyev/sheetfin/internal/store"
)

// AuthRequestJanitor deletes consumed and expired authorization requests.
// Stale rows are already unredeemable; this keeps the table from growing
// without bound.
type AuthRequestJanitor struct {
	requests store.AuthRequestRepository

	interval time.Duration
	logger   *logger.Logger
}

func NewAuthRequestJanitor(requests store.AuthRequestRepository, cfg config.Workers, logger *logger.Logger) *AuthRequestJanitor {
	return &AuthRequestJanitor{
		requests: requests,
		interval: cfg.SweepInterval,
		logger:   logger,
	}
}

func (j *AuthRequestJanitor) Run(ctx context.Context) {
	log := j.logger.GetChildLogger()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", j.interval).Msg("auth request janitor started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("auth request janitor stopped")
			return
		case <-ticker.C:
			removed, err := j.requests.DeleteStale(ctx, time.Now())
			if err != nil {
				log.Err(err).Msg("deleting stale authorization requests failed")
				continue
			}
			if removed > 0 {
				log.Info().Int64("removed", removed).Msg("stale authorization requests deleted")
			}
		}
	}
}
