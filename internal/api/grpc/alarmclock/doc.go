// Package alarmclock implements the gRPC transport for the alarm clock.
//
// The service is declared by hand on top of the protobuf well-known types:
// alarms travel as google.protobuf.Struct, ids as Int64Value. The package
// holds the service descriptor, the conversions between domain values and
// messages, a server that forwards to the alarm manager and a typed client.
package alarmclock
