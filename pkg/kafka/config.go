package kafka

import (
	"crypto/tls"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"

	"github.com/antifraud/msgrisk/pkg/tlsutil"
)

// Config holds Kafka connection parameters.
type Config struct {
	Brokers       []string
	ConsumerGroup string
	ClientID      string

	// SASL configuration for authentication.
	SASLEnabled   bool
	SASLMechanism string // "PLAIN", "SCRAM-SHA-256" or "SCRAM-SHA-512"
	SASLUsername  string
	SASLPassword  string

	// TLS enables TLS for broker connections. CAFile overrides the system roots.
	TLS    bool
	CAFile string
}

func (c Config) tlsConfig() (*tls.Config, error) {
	if !c.TLS {
		return nil, nil
	}
	return tlsutil.ClientConfig(c.CAFile)
}

func (c Config) saslMechanism() (sasl.Mechanism, error) {
	if !c.SASLEnabled {
		return nil, nil
	}
	switch c.SASLMechanism {
	case "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, c.SASLUsername, c.SASLPassword)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, c.SASLUsername, c.SASLPassword)
	case "PLAIN", "":
		return plain.Mechanism{Username: c.SASLUsername, Password: c.SASLPassword}, nil
	default:
		return nil, fmt.Errorf("kafka: unsupported SASL mechanism %q", c.SASLMechanism)
	}
}

// dialer builds the reader-side dialer; nil when no TLS or SASL is needed.
func (c Config) dialer() (*kafkago.Dialer, error) {
	if !c.TLS && !c.SASLEnabled {
		return nil, nil
	}
	mechanism, err := c.saslMechanism()
	if err != nil {
		return nil, err
	}
	tlsCfg, err := c.tlsConfig()
	if err != nil {
		return nil, err
	}
	return &kafkago.Dialer{
		ClientID:      c.ClientID,
		DualStack:     true,
		TLS:           tlsCfg,
		SASLMechanism: mechanism,
	}, nil
}

// transport builds the writer-side transport; nil means kafka-go's default.
func (c Config) transport() (*kafkago.Transport, error) {
	if !c.TLS && !c.SASLEnabled && c.ClientID == "" {
		return nil, nil
	}
	mechanism, err := c.saslMechanism()
	if err != nil {
		return nil, err
	}
	tlsCfg, err := c.tlsConfig()
	if err != nil {
		return nil, err
	}
	return &kafkago.Transport{
		ClientID: c.ClientID,
		TLS:      tlsCfg,
		SASL:     mechanism,
	}, nil
}
