package tui

import (
	"github.com/bantamhq/codoreview/internal/config"
	"github.com/bantamhq/codoreview/internal/history"
	"github.com/bantamhq/codoreview/internal/source"
)

// Results carry the generation they were started in. A result whose
// generation is no longer current is dropped.

type listingLoadedMsg struct {
	gen     uint64
	source  source.Source
	listing *source.Listing
}

type listingFailedMsg struct {
	gen uint64
	err error
}

type fileLoadedMsg struct {
	gen     uint64
	path    string
	content string
}

type fileFailedMsg struct {
	gen  uint64
	path string
	err  error
}

// reviewEvent is sent by the streaming goroutine.
type reviewEvent struct {
	fragment string
	err      error
	done     bool
}

type reviewEventMsg struct {
	gen   uint64
	event reviewEvent
}

type ReviewCopiedMsg struct{}

type SettingsSavedMsg struct {
	Config *config.Config
}

type reviewRecordedMsg struct {
	id string
}

type historyLoadedMsg struct {
	path    string
	reviews []history.Review
}

type ActionErrorMsg struct {
	Operation string
	Err       error
}
