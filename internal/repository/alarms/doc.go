// Package alarms persists alarm records.
//
// Two backends satisfy the same Repository interface: SQLite keeps one row
// per alarm, File keeps the whole set as a YAML document on an afero
// filesystem. Both load everything at once and save batches of upserts and
// deletions; neither notifies about external changes.
package alarms
