package domain

import "time"

// State is the persisted progress of the pose stream.
type State struct {
	LastSeq    uint64    `json:"last_seq"`
	FramesSent uint64    `json:"frames_sent"`
	LastSentAt time.Time `json:"last_sent_at"`
}

// UpdateAfterSend records a delivered batch.
func (s *State) UpdateAfterSend(lastSeq uint64, frames int, at time.Time) {
	if lastSeq > s.LastSeq {
		s.LastSeq = lastSeq
	}
	s.FramesSent += uint64(frames)
	s.LastSentAt = at
}

// IsEmpty reports whether nothing has been sent yet.
func (s State) IsEmpty() bool {
	return s.LastSeq == 0 && s.FramesSent == 0
}
