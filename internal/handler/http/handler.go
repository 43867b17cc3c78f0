// Package http serves the small public HTTP surface of the bot: the OAuth
// consent callback the identity provider redirects the user's browser to,
// and a liveness probe. Everything else happens over the chat transport.
package http

import (
	"github.com/avdeyev/sheetfin/internal/logger"
	"github.com/avdeyev/sheetfin/internal/service"
)

type Handler struct {
	services *service.Services

	// notify tells the user's chat that authorization completed
	notify func(userID int64)

	logger *logger.Logger
}

func NewHandler(services *service.Services, notify func(userID int64), logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services: services,
		notify:   notify,
		logger:   logger,
	}
}
