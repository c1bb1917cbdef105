// Package inspect records reactive-graph activity and serves it to
// inspector tooling.
//
// A Recorder is a state.Tracer: installed with state.SetTracer (or composed
// with state.MultiTracer) it publishes an Event for every object creation,
// destruction, value change, dependency edge, and recompute onto an event
// bus, and folds the stream into a bounded ring plus a live-object
// registry. A Server exposes that view over HTTP for the CLI's inspect
// command or any external client: JSON snapshots for objects, events, and
// stats, plus a websocket feed of events as they happen.
//
//	rec := inspect.NewRecorder()
//	state.SetTracer(rec)
//	srv := inspect.NewServer(rec)
//	port, err := srv.Start(7600)
package inspect
