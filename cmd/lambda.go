package cmd

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"

	"complaintbot/internal/lex"
)

var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "Serve Lex code hooks from the AWS Lambda runtime",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		dispatcher, err := cfg.Dispatcher()
		if err != nil {
			return err
		}

		// lambda.Start never returns, so filings are written synchronously
		// instead of relying on a deferred flush.
		recorder, _ := newRecorder(cfg, false)

		h := lex.NewHandler(cfg.BotPrefix, dispatcher, recorder, cfg.Debug)
		lambda.Start(h.HandleLambda)
		return nil
	},
}
