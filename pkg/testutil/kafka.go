package testutil

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
)

// KafkaContainer wraps a single-node Kafka broker.
type KafkaContainer struct {
	Container *kafka.KafkaContainer
	Brokers   []string
}

// NewKafkaContainer starts a broker, creates topics and registers cleanup
// with t.
func NewKafkaContainer(ctx context.Context, t *testing.T, topics ...string) *KafkaContainer {
	t.Helper()

	container, err := kafka.Run(ctx,
		"confluentinc/confluent-local:7.6.1",
		kafka.WithClusterID("msgrisk-test"),
	)
	if err != nil {
		t.Fatalf("start kafka container: %v", err)
	}

	kc := &KafkaContainer{Container: container}
	t.Cleanup(func() { kc.cleanup(t) })

	kc.Brokers, err = container.Brokers(ctx)
	if err != nil {
		t.Fatalf("kafka brokers: %v", err)
	}

	for _, topic := range topics {
		kc.createTopic(t, topic)
	}
	return kc
}

func (kc *KafkaContainer) createTopic(t *testing.T, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", kc.Brokers[0])
	if err != nil {
		t.Fatalf("dial kafka: %v", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		t.Fatalf("kafka controller: %v", err)
	}
	cc, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		t.Fatalf("dial kafka controller: %v", err)
	}
	defer cc.Close()

	err = cc.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		t.Fatalf("create topic %s: %v", topic, err)
	}
}

func (kc *KafkaContainer) cleanup(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := kc.Container.Terminate(ctx); err != nil {
		t.Logf("terminate kafka container: %v", err)
	}
}
