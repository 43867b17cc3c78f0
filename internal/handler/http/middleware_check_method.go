// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Anton Avdeyev

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// CheckHTTPMethod is registered as the router's MethodNotAllowed handler via
// [chi.Mux.MethodNotAllowed]. Instead of chi's default 405 it answers 404
// when the matched route does not handle the requested method, so probing
// the callback endpoint with POST/PUT reveals nothing about its existence.
//
// The lookup compares each registered route pattern literally against the
// request path; the routes of this surface have no parameterised segments.
func CheckHTTPMethod(router *chi.Mux) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var foundRoute chi.Route
		for _, route := range router.Routes() {
			if route.Pattern == r.URL.Path {
				foundRoute = route
				break
			}
		}

		if _, ok := foundRoute.Handlers[r.Method]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		router.ServeHTTP(w, r)
	}
}
