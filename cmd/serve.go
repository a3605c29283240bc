package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/websocket/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/twilio/twilio-go"
	"google.golang.org/api/option"

	"complaintbot/internal/config"
	"complaintbot/internal/dialogflow"
	"complaintbot/internal/lex"
	"complaintbot/internal/server"
	"complaintbot/internal/voice"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP fulfillment server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		dispatcher, err := cfg.Dispatcher()
		if err != nil {
			return err
		}

		recorder, closer := newRecorder(cfg, true)
		defer closer.Close()

		app := server.New(server.Options{
			Lex:        lex.NewHandler(cfg.BotPrefix, dispatcher, recorder, cfg.Debug),
			Dialogflow: dialogflow.NewHandler(dispatcher, recorder),
			Calls:      callHandler(cfg),
			Logger:     true,
		})

		go func() {
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			<-sig
			log.Println("shutting down...")
			_ = app.Shutdown()
		}()

		log.Printf("complaintbot listening on %s", cfg.HTTPAddr)
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :3000)")
	viper.BindPFlag("http.addr", serveCmd.Flags().Lookup("addr"))
}

// callHandler enables the phone channel when both Twilio and Dialogflow are configured.
func callHandler(cfg config.Config) server.CallHandler {
	if cfg.TwilioAccountSid == "" || cfg.DialogflowProjectID == "" {
		return nil
	}

	tw := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSid,
		Password: cfg.TwilioAuthToken,
	})

	var opts []option.ClientOption
	if cfg.DialogflowCredentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.DialogflowCredentials))
	}
	vc := voice.Config{ProjectID: cfg.DialogflowProjectID, Language: cfg.DialogflowLanguage}

	return func(ctx context.Context, host string, c *websocket.Conn) error {
		session, err := voice.Dial(ctx, vc, tw, opts...)
		if err != nil {
			return err
		}
		defer session.Close()

		log.Println("voice: call connected via", host)
		return session.Serve(c)
	}
}
