// Package service contains the application use cases that sit between the
// HTTP API and the stores: account signup and login, and listing and
// restoring a user's saved sessions.
package service
