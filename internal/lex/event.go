package lex

import "complaintbot/internal/dialog"

// Event is the Lex V1 code hook input.
type Event struct {
	MessageVersion    string            `json:"messageVersion"`
	InvocationSource  string            `json:"invocationSource" validate:"required,oneof=DialogCodeHook FulfillmentCodeHook"`
	UserID            string            `json:"userId"`
	InputTranscript   string            `json:"inputTranscript"`
	SessionAttributes map[string]string `json:"sessionAttributes"`
	RequestAttributes map[string]string `json:"requestAttributes"`
	Bot               *Bot              `json:"bot" validate:"required"`
	OutputDialogMode  string            `json:"outputDialogMode"`
	CurrentIntent     *Intent           `json:"currentIntent" validate:"required"`
}

type Bot struct {
	Name    string `json:"name" validate:"required"`
	Alias   string `json:"alias"`
	Version string `json:"version"`
}

type Intent struct {
	Name               string         `json:"name" validate:"required"`
	Slots              dialog.SlotSet `json:"slots"`
	ConfirmationStatus string         `json:"confirmationStatus"`
}

func (e Event) request() dialog.Request {
	return dialog.Request{
		Turn: dialog.Turn{
			Source:            dialog.InvocationSource(e.InvocationSource),
			SessionAttributes: e.SessionAttributes,
		},
		UserID: e.UserID,
		Flow:   e.CurrentIntent.Name,
		Slots:  e.CurrentIntent.Slots,
	}
}
