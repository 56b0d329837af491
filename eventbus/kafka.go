package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"roast-board/logger"
)

// KafkaEventBus implements EventBus with confluent-kafka-go.
type KafkaEventBus struct {
	Producer *kafka.Producer
	Brokers  string
}

func NewKafkaEventBus(brokers string) (*KafkaEventBus, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"acks":              "all",
		"retries":           5,
	})
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	// reports for messages produced without a delivery channel
	go func() {
		for e := range p.Events() {
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					logger.Log.Errorf("kafka delivery failed %v: %v", ev.TopicPartition, ev.TopicPartition.Error)
				}
			case kafka.Error:
				logger.Log.Errorf("kafka error: %v", ev)
			}
		}
	}()

	return &KafkaEventBus{
		Producer: p,
		Brokers:  brokers,
	}, nil
}

func (k *KafkaEventBus) Close() {
	if k.Producer != nil {
		if remaining := k.Producer.Flush(5000); remaining > 0 {
			logger.Log.Warnf("%d kafka messages still queued after flush", remaining)
		}
		k.Producer.Close()
		logger.Log.Info("kafka producer closed")
	}
}

// Publish produces the event and waits for its delivery report.
func (k *KafkaEventBus) Publish(ctx context.Context, topic string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	// not closed: a late report after ctx is done must not hit a closed channel
	deliveryChan := make(chan kafka.Event, 1)

	err = k.Producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          data,
		Key:            []byte(event.ID),
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("produce to %s: %w", topic, err)
	}

	select {
	case ev := <-deliveryChan:
		if m, ok := ev.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			return fmt.Errorf("deliver to %s: %w", topic, m.TopicPartition.Error)
		}
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (k *KafkaEventBus) newConsumer(groupID string) (*kafka.Consumer, error) {
	return kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":             k.Brokers,
		"group.id":                      groupID,
		"auto.offset.reset":             "earliest",
		"enable.auto.commit":            false,
		"partition.assignment.strategy": "range",
	})
}

func (k *KafkaEventBus) Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error {
	c, err := k.newConsumer(groupID)
	if err != nil {
		return fmt.Errorf("create kafka consumer: %w", err)
	}
	defer c.Close()

	if err := c.SubscribeTopics([]string{topic.Base()}, nil); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic.Base(), err)
	}
	logger.Log.Infof("consumer %s started on %s", groupID, topic.Base())

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("consumer stopping")
			return ctx.Err()
		default:
		}

		msg, err := c.ReadMessage(100 * time.Millisecond)
		if err != nil {
			if kerr, ok := err.(kafka.Error); ok && kerr.IsFatal() {
				return fmt.Errorf("consumer fatal error: %w", err)
			}
			continue
		}

		var evt Event
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			logger.Log.Errorf("bad event payload on %s: %v; skipping", *msg.TopicPartition.Topic, err)
			_, _ = c.CommitMessage(msg)
			continue
		}

		if evt.Retry > 0 {
			logger.Log.Infof("handling event %s (retry %d/%d)", evt.ID, evt.Retry, evt.MaxRetry)
		} else {
			logger.Log.Debugf("handling event %s", evt.ID)
		}

		if herr := handler(ctx, evt); herr != nil {
			dest, dlq := nextDestination(topic, &evt, herr)
			if dlq {
				logger.Log.Errorf("event %s exhausted retries, sending to %s: %v", evt.ID, dest, herr)
			} else {
				logger.Log.Warnf("event %s failed, scheduling retry %d/%d on %s: %v", evt.ID, evt.Retry, evt.MaxRetry, dest, herr)
			}
			if err := k.Publish(ctx, dest, evt); err != nil {
				// offset stays uncommitted so the message is read again
				logger.Log.Errorf("publish to %s failed: %v", dest, err)
				continue
			}
		}

		if _, err := c.CommitMessage(msg); err != nil {
			logger.Log.Errorf("commit offset: %v", err)
		}
	}
}

func (k *KafkaEventBus) StartRetryReinjector(ctx context.Context, groupID string, topic Topic) error {
	c, err := k.newConsumer(groupID)
	if err != nil {
		return fmt.Errorf("create retry consumer: %w", err)
	}
	defer c.Close()

	retryTopics := topic.GetRetryTopics()
	if err := c.SubscribeTopics(retryTopics, nil); err != nil {
		return fmt.Errorf("subscribe retry topics %v: %w", retryTopics, err)
	}
	logger.Log.Infof("retry reinjector %s started on %s", groupID, strings.Join(retryTopics, ", "))

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("retry reinjector stopping")
			return ctx.Err()
		default:
		}

		msg, err := c.ReadMessage(100 * time.Millisecond)
		if err != nil {
			if kerr, ok := err.(kafka.Error); ok {
				if kerr.Code() == kafka.ErrTimedOut {
					continue
				}
				if kerr.IsFatal() {
					return fmt.Errorf("retry reinjector fatal error: %w", err)
				}
			}
			logger.Log.Errorf("retry reinjector read: %v", err)
			time.Sleep(500 * time.Millisecond)
			continue
		}

		topicName := *msg.TopicPartition.Topic
		delay, ok := ParseRetryDelayFromTopicName(topicName)
		if !ok {
			logger.Log.Errorf("cannot parse retry topic %s; skipping", topicName)
			_, _ = c.CommitMessage(msg)
			continue
		}

		if wait := time.Until(msg.Timestamp.Add(delay)); wait > 0 {
			// short sleep only; the uncommitted message is seeked back and
			// read again
			time.Sleep(min(max(wait, 50*time.Millisecond), 500*time.Millisecond))
			if _, err := c.SeekPartitions([]kafka.TopicPartition{msg.TopicPartition}); err != nil {
				logger.Log.Errorf("seek %s: %v", topicName, err)
			}
			continue
		}

		var evt Event
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			logger.Log.Errorf("bad event payload on %s: %v; skipping", topicName, err)
			_, _ = c.CommitMessage(msg)
			continue
		}

		logger.Log.Infof("reinjecting event %s from %s to %s (retry %d)", evt.ID, topicName, topic.Base(), evt.Retry)
		if err := k.Publish(ctx, topic.Base(), evt); err != nil {
			logger.Log.Errorf("reinject %s: %v", evt.ID, err)
			continue
		}
		if _, err := c.CommitMessage(msg); err != nil {
			logger.Log.Errorf("commit after reinject: %v", err)
		}
	}
}
