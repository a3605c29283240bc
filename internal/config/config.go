package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"complaintbot/internal/catalog"
	"complaintbot/internal/complaints"
	"complaintbot/internal/dialog"
	"complaintbot/internal/lex"
)

const EnvPrefix = "COMPLAINTBOT"

type Config struct {
	Debug bool

	HTTPAddr   string
	BotPrefix  string
	FlowPrefix string
	Brand      string

	CatalogPath string
	Regions     []string
	Categories  []string

	TwilioAccountSid string
	TwilioAuthToken  string

	DialogflowProjectID   string
	DialogflowCredentials string
	DialogflowLanguage    string

	KafkaBroker string
	KafkaTopic  string

	RedisAddr string
	DedupTTL  time.Duration
}

// SetDefaults registers defaults and environment binding on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("http.addr", ":3000")
	v.SetDefault("bot.prefix", lex.DefaultBotPrefix)
	v.SetDefault("flow.prefix", dialog.DefaultFlowPrefix)
	v.SetDefault("brand", dialog.DefaultBrand)
	v.SetDefault("dialogflow.language", "en-US")
	v.SetDefault("kafka.topic", complaints.DefaultTopic)
	v.SetDefault("redis.dedupe_ttl", complaints.DefaultDedupTTL)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func Load(v *viper.Viper) Config {
	return Config{
		Debug:                 v.GetBool("debug"),
		HTTPAddr:              v.GetString("http.addr"),
		BotPrefix:             v.GetString("bot.prefix"),
		FlowPrefix:            v.GetString("flow.prefix"),
		Brand:                 v.GetString("brand"),
		CatalogPath:           v.GetString("catalog.path"),
		Regions:               v.GetStringSlice("flow.regions"),
		Categories:            v.GetStringSlice("flow.categories"),
		TwilioAccountSid:      v.GetString("twilio.account_sid"),
		TwilioAuthToken:       v.GetString("twilio.auth_token"),
		DialogflowProjectID:   v.GetString("dialogflow.project_id"),
		DialogflowCredentials: v.GetString("dialogflow.credentials_file"),
		DialogflowLanguage:    v.GetString("dialogflow.language"),
		KafkaBroker:           v.GetString("kafka.broker"),
		KafkaTopic:            v.GetString("kafka.topic"),
		RedisAddr:             v.GetString("redis.addr"),
		DedupTTL:              v.GetDuration("redis.dedupe_ttl"),
	}
}

// Catalog returns the configured catalog, or the built-in one when no path is set.
func (c Config) Catalog() (*catalog.Catalog, error) {
	if c.CatalogPath == "" {
		return catalog.Default(), nil
	}

	cat, err := catalog.Load(c.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return cat, nil
}

// Dispatcher builds the complaint flow dispatcher from the configuration.
func (c Config) Dispatcher() (*dialog.Dispatcher, error) {
	cat, err := c.Catalog()
	if err != nil {
		return nil, err
	}

	opts := []dialog.ValidatorOption{dialog.WithBrand(c.Brand)}
	if len(c.Regions) > 0 {
		opts = append(opts, dialog.WithRegions(c.Regions...))
	}
	if len(c.Categories) > 0 {
		opts = append(opts, dialog.WithCategories(c.Categories...))
	}

	return dialog.NewDispatcher(c.FlowPrefix, dialog.NewValidator(cat, opts...)), nil
}
