package complaints

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"complaintbot/internal/dialog"
)

// Filing is a complaint confirmed to the user in the fulfillment phase.
type Filing struct {
	ID      string    `json:"id"`
	UserID  string    `json:"user_id"`
	Channel string    `json:"channel"`
	Flow    string    `json:"flow"`
	City    string    `json:"city"`
	Type    string    `json:"type"`
	Region  string    `json:"region"`
	FiledAt time.Time `json:"filed_at"`
}

// RecordTimeout bounds the time a fulfilled turn spends recording its filing.
var RecordTimeout = 2 * time.Second

// Recorder hands filed complaints to downstream systems.
type Recorder interface {
	Record(ctx context.Context, f Filing) error
}

type Nop struct{}

func (Nop) Record(context.Context, Filing) error { return nil }

func NewFiling(channel string, req dialog.Request) Filing {
	return Filing{
		ID:      uuid.New().String(),
		UserID:  req.UserID,
		Channel: channel,
		Flow:    req.Flow,
		City:    req.Slots.Value(dialog.SlotCity),
		Type:    req.Slots.Value(dialog.SlotType),
		Region:  req.Slots.Value(dialog.SlotRegion),
		FiledAt: time.Now().UTC(),
	}
}

// Fingerprint identifies the same complaint across retried fulfillment calls.
func (f Filing) Fingerprint() string {
	sum := sha1.Sum([]byte(strings.Join([]string{f.UserID, f.Flow, f.City, f.Type, f.Region}, "\x00")))
	return hex.EncodeToString(sum[:])
}

// Observe records the turn when resp closes it as fulfilled. Recording errors
// are logged only; the dialog response is never affected.
func Observe(ctx context.Context, rec Recorder, channel string, req dialog.Request, resp dialog.Response) {
	if rec == nil {
		return
	}
	if resp.DialogAction.Type != dialog.ActionClose || resp.DialogAction.FulfillmentState != dialog.FulfillmentFulfilled {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, RecordTimeout)
	defer cancel()

	f := NewFiling(channel, req)
	if err := rec.Record(ctx, f); err != nil {
		log.Printf("complaints: failed to record filing %s: %v", f.ID, err)
	}
}
