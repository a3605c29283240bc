package cmd

import (
	"io"
	"log"

	"github.com/redis/go-redis/v9"

	"complaintbot/internal/complaints"
	"complaintbot/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newRecorder wires the filed-complaint pipeline: Kafka when a broker is
// configured, deduplicated through Redis when an address is configured.
// async is false for runtimes that freeze the process after each response.
func newRecorder(cfg config.Config, async bool) (complaints.Recorder, io.Closer) {
	if cfg.KafkaBroker == "" {
		return complaints.Nop{}, nopCloser{}
	}

	log.Printf("complaints: publishing filings to %s on %s", cfg.KafkaTopic, cfg.KafkaBroker)
	kr := complaints.NewKafkaRecorder(cfg.KafkaBroker, cfg.KafkaTopic, async)
	if cfg.RedisAddr == "" {
		return kr, kr
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	return complaints.NewDedupRecorder(rdb, kr, cfg.DedupTTL), closers{kr, rdb}
}

type closers []io.Closer

func (cs closers) Close() error {
	var first error
	for _, c := range cs {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
