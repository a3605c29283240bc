package lex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"

	"complaintbot/internal/complaints"
	"complaintbot/internal/dialog"
)

const (
	DefaultBotPrefix = "MunicipalComplaint"
	channel          = "lex"
)

var (
	ErrInvalidBot   = errors.New("invalid bot name")
	ErrInvalidEvent = errors.New("invalid event")
)

var validate = validator.New()

// Handler serves Lex code hook invocations for one bot.
type Handler struct {
	botPrefix  string
	dispatcher *dialog.Dispatcher
	recorder   complaints.Recorder
	debug      bool
}

func NewHandler(botPrefix string, dispatcher *dialog.Dispatcher, recorder complaints.Recorder, debug bool) *Handler {
	if botPrefix == "" {
		botPrefix = DefaultBotPrefix
	}
	if recorder == nil {
		recorder = complaints.Nop{}
	}
	return &Handler{
		botPrefix:  botPrefix,
		dispatcher: dispatcher,
		recorder:   recorder,
		debug:      debug,
	}
}

// Handle validates the envelope, rejects events addressed to another bot and
// dispatches the turn.
func (h *Handler) Handle(ctx context.Context, ev Event) (dialog.Response, error) {
	if h.debug {
		if raw, err := json.Marshal(ev); err == nil {
			log.Println(string(raw))
		}
	}

	if err := validate.Struct(ev); err != nil {
		return dialog.Response{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	log.Printf("event.bot.name=%s", ev.Bot.Name)
	if !strings.HasPrefix(ev.Bot.Name, h.botPrefix) {
		return dialog.Response{}, ErrInvalidBot
	}

	req := ev.request()
	resp, err := h.dispatcher.Dispatch(req)
	if err != nil {
		return dialog.Response{}, err
	}

	complaints.Observe(ctx, h.recorder, channel, req, resp)
	return resp, nil
}

// HandleLambda adapts Handle to the Lambda runtime signature.
func (h *Handler) HandleLambda(ctx context.Context, ev Event) (*dialog.Response, error) {
	resp, err := h.Handle(ctx, ev)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
