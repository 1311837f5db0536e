package domain

import "time"

// ConnectionID identifies one live client connection, unique per process.
type ConnectionID string

// Participant is one user's state within a room.
//
// The previous*State fields are snapshots taken when a forced-control action
// overrides the corresponding media flag; nil means "no snapshot", which is
// distinct from a saved false. They never leave the process.
type Participant struct {
	ConnectionID ConnectionID `json:"connectionId"`
	Username     string       `json:"username"`

	IsVideoOn   bool `json:"isVideoOn"`
	IsAudioOn   bool `json:"isAudioOn"`
	IsHeadsetOn bool `json:"isHeadsetOn"`

	IsVideoForcedOff   bool `json:"isVideoForcedOff"`
	IsAudioForcedOff   bool `json:"isAudioForcedOff"`
	IsHeadsetForcedOff bool `json:"isHeadsetForcedOff"`

	PreviousVideoState   *bool `json:"-"`
	PreviousAudioState   *bool `json:"-"`
	PreviousHeadsetState *bool `json:"-"`

	IsOwner   bool      `json:"isOwner"`
	UserColor Gradient  `json:"userColor"`
	JoinedAt  time.Time `json:"joinedAt"`

	AudioLevel      int       `json:"audioLevel"`
	IsSpeaking      bool      `json:"isSpeaking"`
	LastAudioUpdate time.Time `json:"lastAudioUpdate"`

	Status      string `json:"status"`
	StatusEmoji string `json:"statusEmoji"`
	StatusText  string `json:"statusText"`
}

// NewParticipant builds the join-time default state: camera and mic off,
// headset on, online status.
func NewParticipant(cid ConnectionID, username string, color Gradient, owner bool) *Participant {
	return &Participant{
		ConnectionID:    cid,
		Username:        username,
		IsHeadsetOn:     true,
		IsOwner:         owner,
		UserColor:       color,
		JoinedAt:        time.Now(),
		LastAudioUpdate: time.Now(),
		Status:          "online",
	}
}

// MediaStates is the fully resolved flag tuple shipped to a moderated client
// so it never has to re-derive the toggle logic locally.
type MediaStates struct {
	IsVideoOn          bool `json:"isVideoOn"`
	IsAudioOn          bool `json:"isAudioOn"`
	IsHeadsetOn        bool `json:"isHeadsetOn"`
	IsVideoForcedOff   bool `json:"isVideoForcedOff"`
	IsAudioForcedOff   bool `json:"isAudioForcedOff"`
	IsHeadsetForcedOff bool `json:"isHeadsetForcedOff"`
}

func (p *Participant) MediaStates() MediaStates {
	return MediaStates{
		IsVideoOn:          p.IsVideoOn,
		IsAudioOn:          p.IsAudioOn,
		IsHeadsetOn:        p.IsHeadsetOn,
		IsVideoForcedOff:   p.IsVideoForcedOff,
		IsAudioForcedOff:   p.IsAudioForcedOff,
		IsHeadsetForcedOff: p.IsHeadsetForcedOff,
	}
}
