package kafka

import (
	"fmt"

	"github.com/IBM/sarama"
	"github.com/Karol-NMD/YOLO-Witness/internal/models"
)

// Producer публикует исходящие события жизненного цикла в Kafka-топик.
// Ключом сообщения служит метка камеры, чтобы события одной камеры шли
// в одну партицию по порядку.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewProducer создаёт продюсер с настройками
func NewProducer(brokers []string, topic string) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	return &Producer{
		producer: producer,
		topic:    topic,
	}, nil
}

func (p *Producer) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	return nil
}

// Deliver отправляет одно событие в Kafka; реализует broker.Sink
func (p *Producer) Deliver(ev models.Event, payload []byte) error {
	kafkaMsg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(ev.Key().Label),
		Value: sarama.ByteEncoder(payload),
	}

	_, _, err := p.producer.SendMessage(kafkaMsg)
	if err != nil {
		return fmt.Errorf("send %s event: %w", ev.Kind(), err)
	}

	return nil
}
