// Package store defines the persistence interfaces of the tutor and the
// key-value backed implementations of them.
//
// Every collection (sessions, users) is serialized as a single JSON document
// under one key of a KeyValueStore. Concrete KeyValueStore backends live
// under internal/platform.
package store
