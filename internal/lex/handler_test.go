package lex

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complaintbot/internal/catalog"
	"complaintbot/internal/complaints"
	"complaintbot/internal/dialog"
)

type memRecorder struct {
	filings []complaints.Filing
}

func (m *memRecorder) Record(_ context.Context, f complaints.Filing) error {
	m.filings = append(m.filings, f)
	return nil
}

func newHandler(rec complaints.Recorder) *Handler {
	d := dialog.NewDispatcher("", dialog.NewValidator(catalog.Default()))
	return NewHandler("", d, rec, false)
}

func decodeEvent(t *testing.T, raw string) Event {
	t.Helper()
	var ev Event
	require.NoError(t, json.Unmarshal([]byte(raw), &ev))
	return ev
}

const midDialogEvent = `{
	"messageVersion": "1.0",
	"invocationSource": "DialogCodeHook",
	"userId": "user-42",
	"sessionAttributes": {"lang": "en"},
	"bot": {"name": "MunicipalComplaintBot", "alias": "$LATEST", "version": "$LATEST"},
	"outputDialogMode": "Text",
	"currentIntent": {
		"name": "RaiseCivicComplaint",
		"slots": {"City": "Noida", "Type": "Civil", "Region": null},
		"confirmationStatus": "None"
	}
}`

func TestHandleElicitsInvalidType(t *testing.T) {
	resp, err := newHandler(nil).Handle(context.Background(), decodeEvent(t, midDialogEvent))
	require.NoError(t, err)

	assert.Equal(t, dialog.ActionElicitSlot, resp.DialogAction.Type)
	assert.Equal(t, dialog.SlotType, resp.DialogAction.SlotToElicit)
	assert.Equal(t, map[string]string{"lang": "en"}, resp.SessionAttributes)
	assert.Equal(t, dialog.ToOptions([]string{"civil", "Horticulture", "Health", "Electrical"}),
		resp.DialogAction.ResponseCard.GenericAttachments[0].Buttons)
}

func TestHandleDelegatesUnchangedSlots(t *testing.T) {
	ev := decodeEvent(t, midDialogEvent)
	city, kind, region := "Mumbai", "Civil", "Mumbai"
	ev.CurrentIntent.Slots = dialog.SlotSet{"City": &city, "Type": &kind, "Region": &region}

	resp, err := newHandler(nil).Handle(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, dialog.ActionDelegate, resp.DialogAction.Type)
	assert.Equal(t, ev.CurrentIntent.Slots, resp.DialogAction.Slots)
}

func TestHandleFulfillmentRecordsFiling(t *testing.T) {
	rec := &memRecorder{}
	ev := decodeEvent(t, midDialogEvent)
	ev.InvocationSource = "FulfillmentCodeHook"

	resp, err := newHandler(rec).Handle(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, dialog.ActionClose, resp.DialogAction.Type)
	assert.Contains(t, resp.DialogAction.Message.Content, "Civil")
	require.Len(t, rec.filings, 1)
	assert.Equal(t, "user-42", rec.filings[0].UserID)
	assert.Equal(t, "lex", rec.filings[0].Channel)
}

func TestHandleRejectsOtherBots(t *testing.T) {
	ev := decodeEvent(t, midDialogEvent)
	ev.Bot.Name = "CoffeeBot"

	_, err := newHandler(nil).Handle(context.Background(), ev)
	assert.ErrorIs(t, err, ErrInvalidBot)
}

func TestHandleUnsupportedIntent(t *testing.T) {
	ev := decodeEvent(t, midDialogEvent)
	ev.CurrentIntent.Name = "OrderFlowers"

	_, err := newHandler(nil).Handle(context.Background(), ev)
	assert.ErrorIs(t, err, dialog.ErrUnsupportedFlow)
	assert.Contains(t, err.Error(), "OrderFlowers")
}

func TestHandleInvalidEnvelope(t *testing.T) {
	cases := map[string]string{
		"missing bot":    `{"invocationSource": "DialogCodeHook", "currentIntent": {"name": "RaiseCivicComplaint"}}`,
		"missing intent": `{"invocationSource": "DialogCodeHook", "bot": {"name": "MunicipalComplaint"}}`,
		"bad source":     `{"invocationSource": "Other", "bot": {"name": "MunicipalComplaint"}, "currentIntent": {"name": "RaiseCivicComplaint"}}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := newHandler(nil).Handle(context.Background(), decodeEvent(t, raw))
			assert.ErrorIs(t, err, ErrInvalidEvent)
		})
	}
}

func TestHandleLambda(t *testing.T) {
	resp, err := newHandler(nil).HandleLambda(context.Background(), decodeEvent(t, midDialogEvent))
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, dialog.ActionElicitSlot, resp.DialogAction.Type)

	ev := decodeEvent(t, midDialogEvent)
	ev.Bot.Name = "Other"
	resp, err = newHandler(nil).HandleLambda(context.Background(), ev)
	assert.Error(t, err)
	assert.Nil(t, resp)
}
