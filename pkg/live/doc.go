// Package live serves a mounted App over HTTP.
//
// The server keeps one live structure in memory. Browsers load the page,
// send input events over a WebSocket (or POST /events) and receive the
// patch log of every reconciliation together with the patched markup:
//
//	srv, err := live.New(app.DefaultState(), live.WithMetrics(metrics))
//	if err != nil {
//		return err
//	}
//	return srv.ListenAndServe(ctx, "localhost:3000")
//
// Access to the app is serialised with a mutex; the engine itself is
// single-threaded.
package live
