// Package ui implements the interactive search-result picker.
//
// The picker is a [bubbletea] list of tracks; selecting one hands it back
// to the CLI layer, which queues the download. The auth flow never runs
// inside the TUI.
package ui
