package dialog

import "encoding/json"

// InvocationSource tells the handler which phase of the conversation it is serving.
type InvocationSource string

const (
	SourceDialogCodeHook      InvocationSource = "DialogCodeHook"
	SourceFulfillmentCodeHook InvocationSource = "FulfillmentCodeHook"
)

// ActionType is the kind of dialog action returned for a turn.
type ActionType string

const (
	ActionElicitSlot    ActionType = "ElicitSlot"
	ActionConfirmIntent ActionType = "ConfirmIntent"
	ActionClose         ActionType = "Close"
	ActionDelegate      ActionType = "Delegate"
)

const (
	FulfillmentFulfilled = "Fulfilled"
	FulfillmentFailed    = "Failed"
)

// Slot names of the complaint intent. They are part of the bot's intent schema.
const (
	SlotCity   = "City"
	SlotType   = "Type"
	SlotRegion = "Region"
)

// SlotSet maps slot names to values. A nil value means the slot was not supplied.
type SlotSet map[string]*string

// Value returns the slot value or "" when the slot is missing or null.
func (s SlotSet) Value(name string) string {
	if v := s[name]; v != nil {
		return *v
	}
	return ""
}

// Turn is the invocation context of one request.
type Turn struct {
	Source            InvocationSource
	SessionAttributes map[string]string
}

// Request is a turn addressed to a flow, as handed to the dispatcher.
type Request struct {
	Turn
	UserID string
	Flow   string
	Slots  SlotSet
}

type Message struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type Option struct {
	Text  string `json:"text"`
	Value string `json:"value"`
}

type Attachment struct {
	Title    string   `json:"title"`
	SubTitle string   `json:"subTitle"`
	Buttons  []Option `json:"buttons"`
}

type ResponseCard struct {
	Version            int          `json:"version"`
	ContentType        string       `json:"contentType"`
	GenericAttachments []Attachment `json:"genericAttachments"`
}

// Action is the dialogAction object. Which fields are set depends on Type.
type Action struct {
	Type             ActionType    `json:"type"`
	IntentName       string        `json:"intentName,omitempty"`
	Slots            SlotSet       `json:"slots,omitempty"`
	SlotToElicit     string        `json:"slotToElicit,omitempty"`
	FulfillmentState string        `json:"fulfillmentState,omitempty"`
	Message          *Message      `json:"message,omitempty"`
	ResponseCard     *ResponseCard `json:"responseCard,omitempty"`
}

// MarshalJSON always writes slots for actions that carry them, as an empty
// object when no slot is known. Close has no slots field.
func (a Action) MarshalJSON() ([]byte, error) {
	type action Action
	if a.Type == ActionClose {
		return json.Marshal(action(a))
	}

	slots := a.Slots
	if slots == nil {
		slots = SlotSet{}
	}
	return json.Marshal(struct {
		action
		Slots SlotSet `json:"slots"`
	}{action: action(a), Slots: slots})
}

// Response is the envelope returned to the dialog manager.
type Response struct {
	SessionAttributes map[string]string `json:"sessionAttributes"`
	DialogAction      Action            `json:"dialogAction"`
}
