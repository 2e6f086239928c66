// Package store holds the reactive single source of truth for the alarm
// collection.
//
// The Store keeps the ordered list of alarm values, the globally chosen next
// wake-up and a stream of "alarm set" confirmations. Writers replace the list
// under one mutex; readers get immutable snapshots, either by polling or by
// subscribing. List and next subscriptions deliver the latest value only,
// so a slow consumer skips intermediate snapshots but never sees a partial one.
package store
