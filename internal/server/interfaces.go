package server

// Server defines the common lifecycle contract of the application runtime.
//
// Implementations are expected to block in [RunServer] until shutdown is
// requested and to release resources in [Shutdown].
type Server interface {
	// RunServer starts every loop and blocks until shutdown.
	RunServer()

	// Shutdown gracefully stops the loops and frees associated resources.
	Shutdown()
}
