package dialog

import (
	"errors"
	"fmt"
	"log"
	"strings"
)

const DefaultFlowPrefix = "RaiseCivicComplaint"

var ErrUnsupportedFlow = errors.New("unsupported intent")

// UnsupportedFlowError is returned for intents no flow is registered for.
type UnsupportedFlowError struct {
	Name string
}

func (e *UnsupportedFlowError) Error() string {
	return fmt.Sprintf("intent with name %s not supported", e.Name)
}

func (e *UnsupportedFlowError) Unwrap() error {
	return ErrUnsupportedFlow
}

// Dispatcher routes turns to the validator by intent name prefix.
type Dispatcher struct {
	prefix    string
	validator *Validator
}

func NewDispatcher(prefix string, validator *Validator) *Dispatcher {
	if prefix == "" {
		prefix = DefaultFlowPrefix
	}
	return &Dispatcher{prefix: prefix, validator: validator}
}

func (d *Dispatcher) Dispatch(req Request) (Response, error) {
	log.Printf("dispatch userId=%s, intent=%s", req.UserID, req.Flow)

	if !strings.HasPrefix(req.Flow, d.prefix) {
		return Response{}, &UnsupportedFlowError{Name: req.Flow}
	}

	return d.validator.Decide(req.Turn, req.Slots, req.Flow), nil
}
