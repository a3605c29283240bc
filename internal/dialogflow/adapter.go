package dialogflow

import (
	"context"
	"fmt"
	"strings"

	"complaintbot/internal/complaints"
	"complaintbot/internal/dialog"
)

const (
	channel             = "dialogflow"
	sessionVarsContext  = "session-vars"
	sessionVarsLifespan = 50
)

// Handler answers Dialogflow webhook calls with the same dispatcher used for Lex.
type Handler struct {
	dispatcher *dialog.Dispatcher
	recorder   complaints.Recorder
}

func NewHandler(dispatcher *dialog.Dispatcher, recorder complaints.Recorder) *Handler {
	if recorder == nil {
		recorder = complaints.Nop{}
	}
	return &Handler{dispatcher: dispatcher, recorder: recorder}
}

// Handle evaluates the call as a dialog turn first. Dialogflow has no delegate
// verb, so a delegated turn is evaluated again as fulfillment.
func (h *Handler) Handle(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error) {
	in := requestFromWebhook(req, dialog.SourceDialogCodeHook)

	resp, err := h.dispatcher.Dispatch(in)
	if err != nil {
		return nil, err
	}

	if resp.DialogAction.Type == dialog.ActionDelegate {
		in.Source = dialog.SourceFulfillmentCodeHook
		if resp, err = h.dispatcher.Dispatch(in); err != nil {
			return nil, err
		}
		complaints.Observe(ctx, h.recorder, channel, in, resp)
	}

	return responseToWebhook(req.Session, resp), nil
}

func requestFromWebhook(req *WebhookRequest, source dialog.InvocationSource) dialog.Request {
	slots := dialog.SlotSet{}
	for name, raw := range req.QueryResult.Parameters {
		if v := paramString(raw); v != "" {
			slots[name] = &v
		} else {
			slots[name] = nil
		}
	}

	return dialog.Request{
		Turn: dialog.Turn{
			Source:            source,
			SessionAttributes: sessionVars(req),
		},
		UserID: sessionID(req.Session),
		Flow:   req.QueryResult.Intent.DisplayName,
		Slots:  slots,
	}
}

func responseToWebhook(session string, resp dialog.Response) *WebhookResponse {
	out := &WebhookResponse{FulfillmentMessages: []Message{}}

	action := resp.DialogAction
	text := ""
	if action.Message != nil {
		text = action.Message.Content
	} else if action.Type == dialog.ActionElicitSlot {
		text = fmt.Sprintf("Which %s?", strings.ToLower(action.SlotToElicit))
	}

	if text != "" {
		out.FulfillmentText = text
		out.FulfillmentMessages = append(out.FulfillmentMessages, Message{Text: &Text{Text: []string{text}}})
	}

	if card := action.ResponseCard; card != nil && len(card.GenericAttachments) > 0 {
		att := card.GenericAttachments[0]
		replies := make([]string, 0, len(att.Buttons))
		for _, b := range att.Buttons {
			replies = append(replies, b.Value)
		}
		out.FulfillmentMessages = append(out.FulfillmentMessages, Message{
			QuickReplies: &QuickReplies{Title: att.Title, QuickReplies: replies},
		})
	}

	if len(resp.SessionAttributes) > 0 && session != "" {
		params := make(map[string]any, len(resp.SessionAttributes))
		for k, v := range resp.SessionAttributes {
			params[k] = v
		}
		out.OutputContexts = []Context{{
			Name:          session + "/contexts/" + sessionVarsContext,
			LifespanCount: sessionVarsLifespan,
			Parameters:    params,
		}}
	}

	return out
}

func sessionVars(req *WebhookRequest) map[string]string {
	attrs := map[string]string{}
	for _, c := range req.QueryResult.OutputContexts {
		if !strings.HasSuffix(c.Name, "/contexts/"+sessionVarsContext) {
			continue
		}
		for k, v := range c.Parameters {
			if s := paramString(v); s != "" {
				attrs[k] = s
			}
		}
	}
	return attrs
}

func sessionID(session string) string {
	if i := strings.LastIndex(session, "/"); i >= 0 {
		return session[i+1:]
	}
	return session
}

// paramString flattens a Dialogflow parameter value. Entities with composite
// values (lists, objects) use their first or printed form.
func paramString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		if len(t) == 0 {
			return ""
		}
		return paramString(t[0])
	default:
		return fmt.Sprint(t)
	}
}
