// Package server wires and runs the application's long-lived loops: the
// HTTP callback server, the Telegram update loop, and the background
// janitors. It owns signal handling and graceful shutdown for all of them.
package server
