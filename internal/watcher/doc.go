// Package watcher implements watch mode: a folder is re-processed after
// eligible media files appear or change in it.
//
// Events are debounced so a batch copy triggers a single run. Events raised
// while a run executes, including the run's own replacements, are discarded
// afterwards. Temporary artifacts never trigger a run.
package watcher
