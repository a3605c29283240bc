package dialog

const (
	contentTypePlainText = "PlainText"
	contentTypeCard      = "application/vnd.amazonaws.card.generic"
)

func PlainText(content string) *Message {
	return &Message{ContentType: contentTypePlainText, Content: content}
}

// GenericCard builds a single-attachment card. A nil options slice produces a card without buttons.
func GenericCard(title, subTitle string, options []Option) *ResponseCard {
	return &ResponseCard{
		Version:     1,
		ContentType: contentTypeCard,
		GenericAttachments: []Attachment{{
			Title:    title,
			SubTitle: subTitle,
			Buttons:  options,
		}},
	}
}

func ElicitSlot(attrs map[string]string, flow string, slots SlotSet, slotToElicit string, msg *Message, card *ResponseCard) Response {
	return Response{
		SessionAttributes: echo(attrs),
		DialogAction: Action{
			Type:         ActionElicitSlot,
			IntentName:   flow,
			Slots:        slots,
			SlotToElicit: slotToElicit,
			Message:      msg,
			ResponseCard: card,
		},
	}
}

func ConfirmIntent(attrs map[string]string, flow string, slots SlotSet, msg *Message, card *ResponseCard) Response {
	return Response{
		SessionAttributes: echo(attrs),
		DialogAction: Action{
			Type:         ActionConfirmIntent,
			IntentName:   flow,
			Slots:        slots,
			Message:      msg,
			ResponseCard: card,
		},
	}
}

func Close(attrs map[string]string, fulfillmentState string, msg *Message) Response {
	return Response{
		SessionAttributes: echo(attrs),
		DialogAction: Action{
			Type:             ActionClose,
			FulfillmentState: fulfillmentState,
			Message:          msg,
		},
	}
}

func Delegate(attrs map[string]string, slots SlotSet) Response {
	return Response{
		SessionAttributes: echo(attrs),
		DialogAction: Action{
			Type:  ActionDelegate,
			Slots: slots,
		},
	}
}

// echo passes session attributes through untouched; nil becomes an empty object on the wire.
func echo(attrs map[string]string) map[string]string {
	if attrs == nil {
		return map[string]string{}
	}
	return attrs
}
