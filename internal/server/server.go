// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anton Avdeyev

package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/avdeyev/sheetfin/internal/bot"
	"github.com/avdeyev/sheetfin/internal/config"
	"github.com/avdeyev/sheetfin/internal/logger"
	"github.com/avdeyev/sheetfin/internal/workers"
)

type server struct {
	httpServer *httpServer
	bot        *bot.Bot
	workers    *workers.Workers

	pollTimeout int
	stop        context.CancelFunc
	logger      *logger.Logger
}

func NewServer(router http.Handler, b *bot.Bot, w *workers.Workers, cfg *config.StructuredConfig, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")

	if b == nil {
		return nil, errors.New("no bot to run")
	}

	srv := &server{
		bot:         b,
		workers:     w,
		pollTimeout: cfg.Telegram.PollTimeout,
		logger:      logger,
	}
	if cfg.Server.HTTPAddress != "" {
		srv.httpServer = newHTTPServer(router, cfg.Server, logger)
	}

	return srv, nil
}

func (s *server) RunServer() {
	if err := s.run(); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Err(err).Msg("error running server")
	}
}

func (s *server) Shutdown() {
	if s.stop != nil {
		s.stop()
	}
}

func (s *server) run() error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()
	s.stop = stop

	if s.httpServer != nil {
		s.logger.Info().Msg("launching HTTP server")
		go s.httpServer.RunServer()
	}

	if s.workers != nil {
		s.logger.Info().Msg("launching background janitors")
		go s.workers.Run(ctx)
	}

	// the update loop is the foreground job; everything else follows its
	// lifetime
	s.logger.Info().Msg("launching telegram update loop")
	err := s.bot.Run(ctx, s.pollTimeout)

	if s.httpServer != nil {
		s.httpServer.Shutdown()
	}

	s.logger.Info().Msg("server shut down gracefully")
	return err
}
