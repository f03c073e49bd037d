package status

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	v0 "vidsphere/internal/contracts/status/v0"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes StatusEvents keyed by video id.
type KafkaSink struct {
	w   messageWriter
	now func() time.Time
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
}

func NewKafkaSink(w messageWriter) *KafkaSink {
	return &KafkaSink{w: w, now: time.Now}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Send(ctx context.Context, update v0.StatusUpdate) error {
	return s.publish(ctx, v0.StatusEvent{
		VideoID:    update.VideoID,
		Status:     update.Status,
		OccurredAt: s.now().UTC(),
	})
}

func (s *KafkaSink) SendRendition(ctx context.Context, videoID, rendition, objectKey string) error {
	return s.publish(ctx, v0.StatusEvent{
		VideoID:    videoID,
		Status:     v0.RenditionPublished,
		Rendition:  rendition,
		ObjectKey:  objectKey,
		OccurredAt: s.now().UTC(),
	})
}

func (s *KafkaSink) publish(ctx context.Context, ev v0.StatusEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.VideoID),
		Value: payload,
	})
}

func (s *KafkaSink) Close() error {
	return s.w.Close()
}
