package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"complaintbot/internal/dialog"
)

var decideFlags struct {
	intent string
	source string
	user   string
	city   string
	kind   string
	region string
}

var decideCmd = &cobra.Command{
	Use:   "decide",
	Short: "Evaluate a single turn and print the dialog response",
	Example: `  complaintbot decide --city Noida --type Civil
  complaintbot decide --source FulfillmentCodeHook --type Electrical`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dispatcher, err := loadConfig().Dispatcher()
		if err != nil {
			return err
		}

		resp, err := dispatcher.Dispatch(decideRequest(cmd))
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode response: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	f := decideCmd.Flags()
	f.StringVar(&decideFlags.intent, "intent", dialog.DefaultFlowPrefix, "intent name")
	f.StringVar(&decideFlags.source, "source", string(dialog.SourceDialogCodeHook), "invocation source (DialogCodeHook or FulfillmentCodeHook)")
	f.StringVar(&decideFlags.user, "user", "cli", "user id")
	f.StringVar(&decideFlags.city, "city", "", "City slot value")
	f.StringVar(&decideFlags.kind, "type", "", "Type slot value")
	f.StringVar(&decideFlags.region, "region", "", "Region slot value")
}

// decideRequest builds the turn from flags. Slots whose flag was not given are null.
func decideRequest(cmd *cobra.Command) dialog.Request {
	slots := dialog.SlotSet{}
	for flag, slot := range map[string]string{
		"city":   dialog.SlotCity,
		"type":   dialog.SlotType,
		"region": dialog.SlotRegion,
	} {
		slots[slot] = nil
		if cmd.Flags().Changed(flag) {
			v, _ := cmd.Flags().GetString(flag)
			slots[slot] = &v
		}
	}

	return dialog.Request{
		Turn:   dialog.Turn{Source: dialog.InvocationSource(decideFlags.source), SessionAttributes: map[string]string{}},
		UserID: decideFlags.user,
		Flow:   decideFlags.intent,
		Slots:  slots,
	}
}
