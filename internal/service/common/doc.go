// Package common holds helpers shared by the command-line tools.
//
// It provides a typed gRPC client for the alarm clock daemon with call
// timeouts and utilities to detect the current system actor (user@host)
// that the daemon records in its logs.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
