// Package statsd wraps the statsd client used for timing emission. It hides
// the datadog dependency so swapping the metrics backend later only touches
// this file; the client defaults to a no-op until Init is called.
package statsd

import (
	"time"

	ddstatsd "github.com/DataDog/datadog-go/v5/statsd"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
)

var client ddstatsd.ClientInterface = &ddstatsd.NoOpClient{}

func Client() ddstatsd.ClientInterface {
	return client
}

// EmitUpdateStat emits the elapsed time since start under the "update" metric,
// tagged with the given stage ("all_systems", a system name, "flush", ...).
func EmitUpdateStat(start time.Time, stage string) {
	duration := time.Since(start)
	err := Client().Timing("update", duration, []string{stage}, 1)
	if err != nil {
		log.Logger.Warn().Msgf("failed to emit update stat: %v", err)
	}
}

// Init replaces the no-op client with a real one pointed at address.
func Init(address string, tags []string) error {
	if address == "" {
		return eris.New("address must not be empty")
	}
	opts := []ddstatsd.Option{
		// The statsd namespace is the prefix of all metrics
		ddstatsd.WithNamespace("archon"),
	}
	if len(tags) > 0 {
		opts = append(opts, ddstatsd.WithTags(tags))
	}

	newClient, err := ddstatsd.New(address, opts...)
	if err != nil {
		return eris.Wrap(err, "")
	}
	client = newClient
	return nil
}
