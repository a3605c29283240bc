package voice

import (
	"fmt"

	"github.com/twilio/twilio-go/twiml"
)

// ConnectStream returns the TwiML that connects an inbound call to the media websocket.
func ConnectStream(host string) (string, error) {
	stream := &twiml.VoiceStream{Url: fmt.Sprintf("wss://%s/ws/media", host)}
	connect := &twiml.VoiceConnect{InnerElements: []twiml.Element{stream}}

	xml, err := twiml.Voice([]twiml.Element{connect})
	if err != nil {
		return "", fmt.Errorf("failed to create voice response: %w", err)
	}
	return xml, nil
}

// SayAndHangup reads the final fulfillment text to the caller and ends the call.
func SayAndHangup(text, language string) (string, error) {
	if text == "" {
		text = "Thank you. Goodbye."
	}
	say := &twiml.VoiceSay{Message: text, Language: language}

	xml, err := twiml.Voice([]twiml.Element{say, &twiml.VoiceHangup{}})
	if err != nil {
		return "", fmt.Errorf("failed to create voice response: %w", err)
	}
	return xml, nil
}
