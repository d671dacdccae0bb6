package quiz

import "context"

// PersistedState is the durable image of a user's quiz state: the live
// session (if any), whether it was active when last saved, and the single
// saved-session slot. It is written on every mutation so a process restart
// can reconstruct the session.
type PersistedState struct {
	Active  bool     `json:"active"`
	Session *Session `json:"session,omitempty"`
	Saved   *Session `json:"saved,omitempty"`
}

// Store is the durable session store the engine depends on. Implementations
// must return (nil, nil) when no state exists, and must map corrupt or
// unparseable entries to defaults rather than failing; the engine treats a
// load error as absent state after logging it.
type Store interface {
	Load(ctx context.Context) (*PersistedState, error)
	Save(ctx context.Context, state *PersistedState) error
	Clear(ctx context.Context) error
}
