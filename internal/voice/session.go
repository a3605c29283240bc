package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	dialogflow "cloud.google.com/go/dialogflow/apiv2"
	"cloud.google.com/go/dialogflow/apiv2/dialogflowpb"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/googleapis/gax-go/v2"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"google.golang.org/api/option"
)

const (
	mulawHeaderSize = 58
	sampleRateHertz = 8000
	welcomeEvent    = "Welcome"
)

var outputAudioConfig = &dialogflowpb.OutputAudioConfig{
	AudioEncoding:   dialogflowpb.OutputAudioEncoding_OUTPUT_AUDIO_ENCODING_MULAW,
	SampleRateHertz: sampleRateHertz,
}

// Config selects the Dialogflow agent a call is bridged to.
type Config struct {
	ProjectID string
	Language  string
}

type streamOpener interface {
	StreamingDetectIntent(ctx context.Context, opts ...gax.CallOption) (dialogflowpb.Sessions_StreamingDetectIntentClient, error)
	Close() error
}

type wsConn interface {
	ReadJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
}

// callUpdater replaces the TwiML of a live call.
type callUpdater func(callSid, xml string) error

// Session bridges one Twilio media stream to a Dialogflow streaming session.
// Dialogflow fulfills the complaint intent through the webhook, so the caller
// goes through the same slot checks as chat users.
type Session struct {
	cfg        Config
	sessions   streamOpener
	updateCall callUpdater

	ctx         context.Context
	sessionPath string

	mu          sync.Mutex
	conn        wsConn
	callSid     string
	streamSid   string
	stream      dialogflowpb.Sessions_StreamingDetectIntentClient
	finalResult *dialogflowpb.QueryResult
	stopped     bool
	interrupted bool
	inputPaused bool
}

// Dial opens a Dialogflow sessions client for one call.
func Dial(ctx context.Context, cfg Config, tw *twilio.RestClient, opts ...option.ClientOption) (*Session, error) {
	client, err := dialogflow.NewSessionsClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Dialogflow session: %w", err)
	}

	update := func(callSid, xml string) error {
		_, err := tw.Api.UpdateCall(callSid, &openapi.UpdateCallParams{Twiml: &xml})
		return err
	}
	return newSession(ctx, cfg, client, update), nil
}

func newSession(ctx context.Context, cfg Config, sessions streamOpener, update callUpdater) *Session {
	if cfg.Language == "" {
		cfg.Language = "en-US"
	}
	return &Session{
		cfg:         cfg,
		sessions:    sessions,
		updateCall:  update,
		ctx:         ctx,
		sessionPath: fmt.Sprintf("projects/%s/agent/sessions/%s", cfg.ProjectID, uuid.New().String()),
	}
}

// Serve reads media stream events until the call stops or the connection fails.
func (s *Session) Serve(c wsConn) error {
	s.mu.Lock()
	s.conn = c
	s.mu.Unlock()

	var err error
	for !s.isStopped() && err == nil {
		var ev InboundEvent
		if rerr := c.ReadJSON(&ev); rerr != nil {
			break
		}
		err = s.handle(&ev)
	}
	return err
}

func (s *Session) handle(ev *InboundEvent) error {
	switch ev.Event {
	case "start":
		if ev.Start == nil {
			return nil
		}
		s.mu.Lock()
		s.callSid = ev.Start.CallSid
		s.streamSid = ev.Start.StreamSid
		s.mu.Unlock()
		return s.welcome()

	case "media":
		if ev.Media != nil && !s.isInputPaused() {
			return s.onCallerAudio(ev.Media.Payload)
		}

	case "mark":
		if ev.Mark != nil && ev.Mark.Name == markEndOfInteraction {
			s.onFinalResult()
		}

	case "stop":
		s.Close()
	}
	return nil
}

func (s *Session) welcome() error {
	stream, err := s.sessions.StreamingDetectIntent(s.ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize Dialogflow streaming client: %w", err)
	}

	req := &dialogflowpb.StreamingDetectIntentRequest{
		Session:           s.sessionPath,
		OutputAudioConfig: outputAudioConfig,
		QueryInput: &dialogflowpb.QueryInput{
			Input: &dialogflowpb.QueryInput_Event{
				Event: &dialogflowpb.EventInput{Name: welcomeEvent, LanguageCode: s.cfg.Language},
			},
		},
	}
	if err := stream.Send(req); err != nil {
		return fmt.Errorf("failed to send Dialogflow welcome event: %w", err)
	}

	s.mu.Lock()
	s.stream = stream
	s.mu.Unlock()

	s.receive(stream)
	return nil
}

// audioStream returns the open audio stream, starting one on first use.
func (s *Session) audioStream() (dialogflowpb.Sessions_StreamingDetectIntentClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stream != nil {
		return s.stream, nil
	}

	stream, err := s.sessions.StreamingDetectIntent(s.ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize streaming detect intent client: %w", err)
	}

	req := &dialogflowpb.StreamingDetectIntentRequest{
		Session:           s.sessionPath,
		OutputAudioConfig: outputAudioConfig,
		QueryInput: &dialogflowpb.QueryInput{
			Input: &dialogflowpb.QueryInput_AudioConfig{
				AudioConfig: &dialogflowpb.InputAudioConfig{
					SingleUtterance: true,
					AudioEncoding:   dialogflowpb.AudioEncoding_AUDIO_ENCODING_MULAW,
					SampleRateHertz: sampleRateHertz,
					LanguageCode:    s.cfg.Language,
				},
			},
		},
	}
	if err := stream.Send(req); err != nil {
		return nil, fmt.Errorf("failed to initialize Dialogflow audio stream: %w", err)
	}

	s.stream = stream
	go s.receive(stream)

	return stream, nil
}

func (s *Session) onCallerAudio(audio []byte) error {
	stream, err := s.audioStream()
	if err != nil {
		return err
	}

	if err := stream.Send(&dialogflowpb.StreamingDetectIntentRequest{InputAudio: audio}); err != nil {
		return fmt.Errorf("failed to send audio to Dialogflow: %w", err)
	}
	return nil
}

func (s *Session) receive(stream dialogflowpb.Sessions_StreamingDetectIntentClient) {
	for {
		resp, err := stream.Recv()
		if err != nil {
			break
		}

		if len(resp.OutputAudio) > mulawHeaderSize {
			s.send(mediaEvent(s.currentStreamSid(), resp.OutputAudio[mulawHeaderSize:]))
		}

		if transcript := resp.GetRecognitionResult().GetTranscript(); transcript != "" {
			log.Println("voice: recognition result:", transcript)
			s.interrupt()
		}

		if resp.GetRecognitionResult().GetMessageType() == dialogflowpb.StreamingRecognitionResult_END_OF_SINGLE_UTTERANCE {
			s.mu.Lock()
			s.inputPaused = true
			s.mu.Unlock()
		}

		if qr := resp.GetQueryResult(); qr != nil && qr.GetIntent() != nil {
			if qr.GetIntent().GetEndInteraction() {
				log.Println("voice: final intent:", qr.GetIntent().GetDisplayName())
				s.mu.Lock()
				s.finalResult = qr
				s.mu.Unlock()
			} else {
				log.Println("voice: intent detected:", qr.GetIntent().GetDisplayName())
			}
		}
	}

	s.mu.Lock()
	if s.stream == stream {
		s.stream = nil
	}
	s.interrupted = false
	s.inputPaused = false
	final := s.finalResult != nil
	s.mu.Unlock()

	if final {
		s.send(endOfInteractionEvent(s.currentStreamSid()))
	}
}

// interrupt clears audio queued on the Twilio side once the caller speaks.
func (s *Session) interrupt() {
	s.mu.Lock()
	already := s.interrupted
	s.interrupted = true
	s.mu.Unlock()

	if !already {
		s.send(clearEvent(s.currentStreamSid()))
	}
}

func (s *Session) onFinalResult() {
	s.mu.Lock()
	callSid := s.callSid
	text := s.finalResult.GetFulfillmentText()
	s.mu.Unlock()

	xml, err := SayAndHangup(text, s.cfg.Language)
	if err == nil {
		err = s.updateCall(callSid, xml)
	}
	if err != nil {
		log.Println("voice: failed to end call:", err)
	}

	s.Close()
}

func (s *Session) send(ev *OutboundEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil || s.stopped {
		return
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Println("voice: failed to write to media stream:", err)
	}
}

func (s *Session) currentStreamSid() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streamSid
}

func (s *Session) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func (s *Session) isInputPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputPaused
}

// Close releases the Dialogflow client. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	log.Println("voice: closing session", s.sessionPath)

	if s.stream != nil {
		s.stream.CloseSend()
		s.stream = nil
	}
	if s.sessions != nil {
		s.sessions.Close()
	}
	s.stopped = true
}
