// Package server runs the alarm clock daemon.
//
// Run wires the configuration, the alarm repository, the store, the alarm
// manager with its persister, the scheduler with the wake-up timer, the
// clock watcher, the notifiers and the gRPC and HTTP surfaces, then blocks
// until the context is canceled and shuts everything down in order.
package server
