package session

import (
	"image"
	"time"

	sess "github.com/abhisek/amcprep/internal/session"
)

// sessionInitMsg is sent when the plan has been built.
type sessionInitMsg struct {
	State *sess.State
	Err   error
}

// imageLoadedMsg carries the decoded image of the problem at Index.
type imageLoadedMsg struct {
	Index int
	Image image.Image
	Err   error
}

// timerTickMsg is sent every second to update the clocks.
type timerTickMsg time.Time

// answerSavedMsg confirms that an attempt was written to the store.
type answerSavedMsg struct {
	Err error
}
