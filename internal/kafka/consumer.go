package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/jmehdipour/lunchly/internal/config"
	"github.com/segmentio/kafka-go"
)

// Message is one booking record as read from the topic.
type Message = kafka.Message

// BookingReader reads the booked-reservations topic as part of a consumer
// group. Offsets move only through Commit, once a booking is settled.
type BookingReader struct {
	r     *kafka.Reader
	topic string
}

var errNoBrokers = errors.New("kafka: no brokers configured")

// readerConfig maps the kafka config section onto the reader. A zero
// commit_interval_ms commits every booking synchronously.
func readerConfig(c config.KafkaConfig) (kafka.ReaderConfig, error) {
	if len(c.Brokers) == 0 {
		return kafka.ReaderConfig{}, errNoBrokers
	}
	if c.Topic == "" || c.GroupID == "" {
		return kafka.ReaderConfig{}, errors.New("kafka: topic and group_id are required")
	}

	rc := kafka.ReaderConfig{
		Brokers:        c.Brokers,
		Topic:          c.Topic,
		GroupID:        c.GroupID,
		MinBytes:       c.MinBytes,
		MaxBytes:       c.MaxBytes,
		CommitInterval: time.Duration(c.CommitInterval) * time.Millisecond,
		MaxWait:        250 * time.Millisecond,
	}
	if rc.MinBytes <= 0 {
		rc.MinBytes = 1 << 10
	}
	if rc.MaxBytes <= 0 {
		rc.MaxBytes = 10 << 20
	}
	return rc, nil
}

func NewBookingReader(c config.KafkaConfig) (*BookingReader, error) {
	rc, err := readerConfig(c)
	if err != nil {
		return nil, err
	}
	return &BookingReader{r: kafka.NewReader(rc), topic: c.Topic}, nil
}

func (b *BookingReader) Topic() string { return b.topic }

func (b *BookingReader) Fetch(ctx context.Context) (Message, error) {
	return b.r.FetchMessage(ctx)
}

func (b *BookingReader) Commit(ctx context.Context, m Message) error {
	return b.r.CommitMessages(ctx, m)
}

func (b *BookingReader) Close() error { return b.r.Close() }
