package quiz

import "errors"

var (
	// ErrNoQuestionsAvailable is returned when the supplier produced zero
	// questions after applying the session filters.
	ErrNoQuestionsAvailable = errors.New("no questions available for the given filters")
	// ErrSessionAlreadySaved is returned when starting while a paused
	// session occupies the single saved-session slot.
	ErrSessionAlreadySaved = errors.New("a saved session exists; resume or submit it first")
	// ErrSessionActive is returned when starting while a session is active.
	ErrSessionActive = errors.New("a session is already active")
	// ErrNoActiveSession is returned by operations that require an active session.
	ErrNoActiveSession = errors.New("no active session")
	// ErrNoSavedSession is returned by Resume when the saved slot is empty.
	ErrNoSavedSession = errors.New("no saved session to resume")
	// ErrStrictTiming is returned by Pause on a strict-timing session.
	ErrStrictTiming = errors.New("pausing is disabled for strict-timing sessions")
)
