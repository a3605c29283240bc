package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complaintbot/internal/complaints"
	"complaintbot/internal/config"
	"complaintbot/internal/dialog"
)

func run(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestDecideCommand(t *testing.T) {
	out := run(t, "decide", "--city", "Noida", "--type", "Civil")

	var resp dialog.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	assert.Equal(t, dialog.ActionElicitSlot, resp.DialogAction.Type)
	assert.Equal(t, dialog.SlotType, resp.DialogAction.SlotToElicit)
	assert.Nil(t, resp.DialogAction.Slots[dialog.SlotRegion])
}

func TestCatalogCommand(t *testing.T) {
	out := run(t, "catalog")

	assert.Contains(t, out, "name: Noida")
	assert.Contains(t, out, "- Horticulture")
	assert.Contains(t, out, "name: Mumbai")
}

func TestNewRecorderWithoutBroker(t *testing.T) {
	rec, closer := newRecorder(config.Config{}, true)

	assert.Equal(t, complaints.Nop{}, rec)
	assert.NoError(t, closer.Close())
}

func TestNewRecorderWiring(t *testing.T) {
	rec, closer := newRecorder(config.Config{KafkaBroker: "localhost:9092", KafkaTopic: "complaints.filed"}, false)
	assert.IsType(t, &complaints.KafkaRecorder{}, rec)
	closer.Close()

	rec, closer = newRecorder(config.Config{KafkaBroker: "localhost:9092", RedisAddr: "localhost:6379"}, true)
	assert.IsType(t, &complaints.DedupRecorder{}, rec)
	closer.Close()
}

func TestCallHandlerRequiresTwilioAndDialogflow(t *testing.T) {
	assert.Nil(t, callHandler(config.Config{TwilioAccountSid: "AC1"}))
	assert.Nil(t, callHandler(config.Config{DialogflowProjectID: "p1"}))
	assert.NotNil(t, callHandler(config.Config{TwilioAccountSid: "AC1", DialogflowProjectID: "p1"}))
}
