package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"complaintbot/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "complaintbot",
	Short: "Fulfillment service for the municipal complaint bot",
	Long: `complaintbot validates civic complaint intents coming from Amazon Lex or
Dialogflow, asks callers for missing or unsupported details and confirms the
complaint once every slot is valid.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./complaintbot.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "log full inbound events")
	rootCmd.PersistentFlags().String("catalog", "", "service catalog YAML file (default is the built-in catalog)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("catalog.path", rootCmd.PersistentFlags().Lookup("catalog"))

	rootCmd.AddCommand(serveCmd, lambdaCmd, decideCmd, catalogCmd)
}

func initConfig() {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("complaintbot")
	}

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("debug") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Error reading config file %s: %v\n", cfgFile, err)
		os.Exit(1)
	}
}

func loadConfig() config.Config {
	return config.Load(viper.GetViper())
}
