package playback

import "sync/atomic"

// State holds the control flags of one session. Mutations happen on the
// session executor; the streaming worker reads them between frames.
type State struct {
	paused     atomic.Bool
	aborted    atomic.Bool
	complete   atomic.Bool
	sentenceID atomic.Pointer[string]
}

func NewState() *State {
	s := &State{}
	s.complete.Store(true)
	empty := ""
	s.sentenceID.Store(&empty)
	return s
}

func (s *State) Paused() bool            { return s.paused.Load() }
func (s *State) Aborted() bool           { return s.aborted.Load() }
func (s *State) UtteranceComplete() bool { return s.complete.Load() }

func (s *State) CurrentSentenceID() string {
	return *s.sentenceID.Load()
}

// Active reports a current utterance that is neither finished nor aborted.
func (s *State) Active() bool {
	return s.CurrentSentenceID() != "" && !s.complete.Load() && !s.aborted.Load()
}

func (s *State) setSentenceID(id string) {
	s.sentenceID.Store(&id)
}

// begin makes sentenceID the current utterance.
func (s *State) begin(sentenceID string) {
	s.aborted.Store(false)
	s.paused.Store(false)
	s.complete.Store(false)
	s.setSentenceID(sentenceID)
}

// abort marks the utterance finished and detaches it so the worker treats
// anything still in flight as stale.
func (s *State) abort() {
	s.aborted.Store(true)
	s.complete.Store(true)
	s.paused.Store(false)
	s.setSentenceID("")
}

func (s *State) finish(sentenceID string) bool {
	if s.CurrentSentenceID() != sentenceID {
		return false
	}
	s.complete.Store(true)
	return true
}

func (s *State) setPaused(v bool) (changed bool) {
	return s.paused.CompareAndSwap(!v, v)
}
