// Package topology provides watchers that signal routing table
// invalidation to a plexus RoutedSession.
//
// A routed session normally refreshes its cached routing table only
// when the server-reported TTL expires. The watchers in this package
// let operations teams force an earlier refresh, e.g. right before
// cluster members are taken down for maintenance, so clients pick up
// the new topology without waiting out the TTL.
//
// Two implementations are provided:
//
//   - Local: in-memory, programmatically controlled. Ideal for unit
//     tests and demos.
//   - NATS: backed by a NATS JetStream KeyValue bucket. Operations
//     teams PUT an InvalidateConfig JSON document to a well-known key;
//     every watching client refreshes on its next routed call.
//
// Example:
//
//	nc, _ := nats.Connect("nats://localhost:4222")
//	js, _ := jetstream.New(nc)
//	kv, _ := js.KeyValue(ctx, "plexus-config")
//
//	watcher, _ := topology.NewNATS(kv, topology.WithKey("routing.invalidate"))
//	session, _ := plexus.NewRoutedSession(bootstrap, connector, baseURL,
//	    plexus.WithTopologyWatcher(watcher),
//	)
package topology
