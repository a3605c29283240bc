package dialogflow

// Dialogflow ES fulfillment webhook payloads.

type WebhookIntent struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

type Text struct {
	Text []string `json:"text"`
}

type QuickReplies struct {
	Title        string   `json:"title,omitempty"`
	QuickReplies []string `json:"quickReplies"`
}

type Message struct {
	Text         *Text         `json:"text,omitempty"`
	QuickReplies *QuickReplies `json:"quickReplies,omitempty"`
}

type Context struct {
	Name          string         `json:"name"`
	LifespanCount int            `json:"lifespanCount,omitempty"`
	Parameters    map[string]any `json:"parameters,omitempty"`
}

type QueryResult struct {
	QueryText                 string         `json:"queryText"`
	Parameters                map[string]any `json:"parameters"`
	AllRequiredParamsPresent  bool           `json:"allRequiredParamsPresent"`
	FulfillmentText           string         `json:"fulfillmentText"`
	Intent                    WebhookIntent  `json:"intent"`
	FulfillmentMessages       []Message      `json:"fulfillmentMessages"`
	OutputContexts            []Context      `json:"outputContexts"`
	IntentDetectionConfidence float64        `json:"intentDetectionConfidence"`
	LanguageCode              string         `json:"languageCode"`
}

type WebhookRequest struct {
	ResponseID  string      `json:"responseId"`
	Session     string      `json:"session"`
	QueryResult QueryResult `json:"queryResult"`
}

type WebhookResponse struct {
	FulfillmentText     string    `json:"fulfillmentText,omitempty"`
	FulfillmentMessages []Message `json:"fulfillmentMessages"`
	OutputContexts      []Context `json:"outputContexts,omitempty"`
}
