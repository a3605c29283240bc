package voice

// Twilio media stream websocket messages.

// Start opens a media stream and names the call it belongs to.
type Start struct {
	AccountSid       string            `json:"accountSid"`
	StreamSid        string            `json:"streamSid"`
	CallSid          string            `json:"callSid"`
	Tracks           []string          `json:"tracks"`
	CustomParameters map[string]string `json:"customParameters"`
	MediaFormat      MediaFormat       `json:"mediaFormat"`
}

// MediaFormat describes the inbound audio; Twilio sends 8 kHz mono mulaw.
type MediaFormat struct {
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sampleRate"`
	Channels   int    `json:"channels"`
}

// Mark echoes back a mark we sent once its audio finished playing.
type Mark struct {
	Name string `json:"name"`
}

// Media carries one chunk of caller audio.
type Media struct {
	Track     string `json:"track"`
	Chunk     string `json:"chunk"`
	Timestamp string `json:"timestamp"`
	Payload   []byte `json:"payload"`
}

// InboundEvent is any message Twilio writes to the media websocket.
type InboundEvent struct {
	Event     string  `json:"event"`
	Start     *Start  `json:"start"`
	Media     *Media  `json:"media"`
	Mark      *Mark   `json:"mark"`
	StreamSid *string `json:"streamSid"`
}

// MediaPayload is bot audio queued for playback to the caller.
type MediaPayload struct {
	Payload []byte `json:"payload"`
}

// MarkPayload labels a point in the playback queue.
type MarkPayload struct {
	Name string `json:"name"`
}

// OutboundEvent is a media, mark or clear message written back to Twilio.
type OutboundEvent struct {
	StreamSid string        `json:"streamSid"`
	Event     string        `json:"event"`
	Media     *MediaPayload `json:"media,omitempty"`
	Mark      *MarkPayload  `json:"mark,omitempty"`
}

const markEndOfInteraction = "endOfInteraction"

func mediaEvent(streamSid string, audio []byte) *OutboundEvent {
	return &OutboundEvent{Event: "media", StreamSid: streamSid, Media: &MediaPayload{Payload: audio}}
}

func clearEvent(streamSid string) *OutboundEvent {
	return &OutboundEvent{Event: "clear", StreamSid: streamSid}
}

func endOfInteractionEvent(streamSid string) *OutboundEvent {
	return &OutboundEvent{Event: "mark", StreamSid: streamSid, Mark: &MarkPayload{Name: markEndOfInteraction}}
}
