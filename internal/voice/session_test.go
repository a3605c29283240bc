package voice

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"

	"cloud.google.com/go/dialogflow/apiv2/dialogflowpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	dialogflowpb.Sessions_StreamingDetectIntentClient

	mu        sync.Mutex
	sent      []*dialogflowpb.StreamingDetectIntentRequest
	responses []*dialogflowpb.StreamingDetectIntentResponse
	closed    bool
}

func (f *fakeStream) Send(req *dialogflowpb.StreamingDetectIntentRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, req)
	return nil
}

func (f *fakeStream) Recv() (*dialogflowpb.StreamingDetectIntentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.responses) == 0 {
		return nil, io.EOF
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

func (f *fakeStream) CloseSend() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeStream) requests() []*dialogflowpb.StreamingDetectIntentRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*dialogflowpb.StreamingDetectIntentRequest(nil), f.sent...)
}

type fakeOpener struct {
	streams []*fakeStream
	opened  int
	closed  bool
	err     error
}

func (o *fakeOpener) StreamingDetectIntent(context.Context, ...gax.CallOption) (dialogflowpb.Sessions_StreamingDetectIntentClient, error) {
	if o.err != nil {
		return nil, o.err
	}
	s := o.streams[o.opened]
	o.opened++
	return s, nil
}

func (o *fakeOpener) Close() error {
	o.closed = true
	return nil
}

type fakeConn struct {
	mu      sync.Mutex
	inbound []string
	written []OutboundEvent
}

func (c *fakeConn) ReadJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.inbound) == 0 {
		return io.EOF
	}
	raw := c.inbound[0]
	c.inbound = c.inbound[1:]
	return json.Unmarshal([]byte(raw), v)
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	var ev OutboundEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, ev)
	return nil
}

func (c *fakeConn) events() []OutboundEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]OutboundEvent(nil), c.written...)
}

const startEvent = `{"event": "start", "start": {"callSid": "CA123", "streamSid": "MZ456", "tracks": ["inbound"]}}`

func TestServeWelcomeThenFinalResultEndsCall(t *testing.T) {
	welcome := &fakeStream{responses: []*dialogflowpb.StreamingDetectIntentResponse{{
		QueryResult: &dialogflowpb.QueryResult{
			FulfillmentText: "Your complaint has been registered",
			Intent:          &dialogflowpb.Intent{DisplayName: "RaiseCivicComplaint", EndInteraction: true},
		},
	}}}
	opener := &fakeOpener{streams: []*fakeStream{welcome}}

	var gotSid, gotXML string
	s := newSession(context.Background(), Config{ProjectID: "p1"}, opener, func(callSid, xml string) error {
		gotSid, gotXML = callSid, xml
		return nil
	})

	conn := &fakeConn{inbound: []string{
		startEvent,
		`{"event": "mark", "mark": {"name": "endOfInteraction"}}`,
		`{"event": "media", "media": {"payload": "AAAA"}}`,
	}}
	require.NoError(t, s.Serve(conn))

	sent := welcome.requests()
	require.Len(t, sent, 1)
	assert.Equal(t, "Welcome", sent[0].GetQueryInput().GetEvent().GetName())
	assert.Equal(t, "en-US", sent[0].GetQueryInput().GetEvent().GetLanguageCode())
	assert.Contains(t, sent[0].Session, "projects/p1/agent/sessions/")

	events := conn.events()
	require.Len(t, events, 1)
	assert.Equal(t, "mark", events[0].Event)
	assert.Equal(t, "MZ456", events[0].StreamSid)
	assert.Equal(t, markEndOfInteraction, events[0].Mark.Name)

	assert.Equal(t, "CA123", gotSid)
	assert.Contains(t, gotXML, "Your complaint has been registered")
	assert.Contains(t, gotXML, "Hangup")
	assert.True(t, s.isStopped())
	assert.True(t, opener.closed)
	assert.Equal(t, 1, opener.opened)
}

func TestCallerAudioOpensAudioStream(t *testing.T) {
	audio := &fakeStream{}
	opener := &fakeOpener{streams: []*fakeStream{audio}}
	s := newSession(context.Background(), Config{ProjectID: "p1", Language: "hi-IN"}, opener, nil)

	require.NoError(t, s.onCallerAudio([]byte{1, 2, 3}))

	sent := audio.requests()
	require.Len(t, sent, 2)
	cfg := sent[0].GetQueryInput().GetAudioConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, "hi-IN", cfg.LanguageCode)
	assert.Equal(t, int32(sampleRateHertz), cfg.SampleRateHertz)
	assert.True(t, cfg.SingleUtterance)
	assert.Equal(t, []byte{1, 2, 3}, sent[1].InputAudio)
}

func TestWelcomeOpenError(t *testing.T) {
	s := newSession(context.Background(), Config{}, &fakeOpener{err: errors.New("no credentials")}, nil)

	err := s.handle(&InboundEvent{Event: "start", Start: &Start{CallSid: "CA1"}})
	assert.ErrorContains(t, err, "no credentials")
}

func TestStopClosesOnce(t *testing.T) {
	opener := &fakeOpener{}
	s := newSession(context.Background(), Config{}, opener, nil)

	require.NoError(t, s.handle(&InboundEvent{Event: "stop"}))
	s.Close()

	assert.True(t, s.isStopped())
	assert.True(t, opener.closed)
}

func TestOutboundEventJSON(t *testing.T) {
	data, err := json.Marshal(clearEvent("MZ1"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"streamSid": "MZ1", "event": "clear"}`, string(data))

	data, err = json.Marshal(mediaEvent("MZ1", []byte{0xff}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"streamSid": "MZ1", "event": "media", "media": {"payload": "/w=="}}`, string(data))
}

func TestTwiML(t *testing.T) {
	xml, err := ConnectStream("bot.example.com")
	require.NoError(t, err)
	assert.Contains(t, xml, "wss://bot.example.com/ws/media")
	assert.Contains(t, xml, "<Connect>")

	xml, err = SayAndHangup("", "en-US")
	require.NoError(t, err)
	assert.Contains(t, xml, "Thank you. Goodbye.")
}
