// Package client implements the alarm-clock command line operations.
//
// Each operation talks to the daemon through the gRPC client from the common
// package and prints the result as a table.
package client
