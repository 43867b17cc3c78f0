// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anton Avdeyev

package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/avdeyev/sheetfin/internal/logger"
	"github.com/avdeyev/sheetfin/internal/service"
)

const successPage = `<!DOCTYPE html>
<html>
<head><title>Connected</title></head>
<body>
<h1>Spreadsheet access granted</h1>
<p>You can close this tab and return to the chat.</p>
</body>
</html>`

const failurePage = `<!DOCTYPE html>
<html>
<head><title>Authorization failed</title></head>
<body>
<h1>Authorization failed</h1>
<p>%s</p>
</body>
</html>`

// oauthCallback handles the browser redirect from the identity provider's
// consent screen. The state query parameter carries the correlation token
// minted when the user started the flow in the chat.
func (h *Handler) oauthCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		// user declined on the consent screen
		log.Info().Str("reason", errParam).Msg("authorization declined by user")
		writePage(w, http.StatusBadRequest, "Access was not granted. Start over from the chat with /auth.")
		return
	}

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		log.Warn().Msg("callback without state or code")
		writePage(w, http.StatusBadRequest, "The authorization link is incomplete. Start over from the chat with /auth.")
		return
	}

	userID, err := h.services.Correlator.Complete(ctx, state, code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownOrExpiredRequest):
			log.Warn().Err(err).Msg("callback with unknown or expired state")
			writePage(w, http.StatusBadRequest, "This authorization link has expired or was already used. Start over from the chat with /auth.")
		case errors.Is(err, service.ErrTemporarilyUnavailable):
			log.Err(err).Msg("provider unavailable during code exchange")
			writePage(w, http.StatusBadGateway, "The authorization service is temporarily unavailable. Please try again in a minute.")
		default:
			log.Err(err).Msg("unexpected error completing authorization")
			writePage(w, http.StatusInternalServerError, "Something went wrong on our side. Please try again.")
		}
		return
	}

	log.Info().Int64("user_id", userID).Msg("authorization callback completed")

	if h.notify != nil {
		h.notify(userID)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(successPage))
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func writePage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, failurePage, message)
}
