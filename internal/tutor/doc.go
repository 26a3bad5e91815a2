// Package tutor holds the live assessment state for each user.
//
// A Workspace moves from the upload stage to the dashboard once a document
// has been analyzed, serves questions, records one evaluation per question,
// and folds each evaluation's memory delta into the learner memory. Remote
// calls run without holding the workspace lock; a busy flag rejects
// overlapping submissions and an epoch counter discards results that arrive
// after the session was reset or replaced.
//
// Every committed transition is published as an events.StateChangedEvent.
// The Autosaver consumes those events and writes the full session through a
// store.SessionStore.
package tutor
