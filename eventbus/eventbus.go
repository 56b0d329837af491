// Package eventbus publishes and consumes JSON events over Kafka with
// delayed retry topics and a dead letter topic.
package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RetryDelays is the delay before retry n (1-based) is re-injected.
var RetryDelays = []time.Duration{
	10 * time.Second,
	30 * time.Second,
	1 * time.Minute,
	5 * time.Minute,
	10 * time.Minute,
}

// Topic names a base topic and derives its retry and DLQ topics.
type Topic struct {
	base string
}

func NewTopic(base string) Topic {
	return Topic{base: base}
}

func (t Topic) Base() string {
	return t.base
}

// DLQ returns "<base>.dlq".
func (t Topic) DLQ() string {
	return t.base + ".dlq"
}

// GetRetryTopics returns "<base>.retry.1" ... "<base>.retry.N".
func (t Topic) GetRetryTopics() []string {
	topics := make([]string, len(RetryDelays))
	for i := range RetryDelays {
		topics[i] = t.retryTopic(i + 1)
	}
	return topics
}

// GetRetryTopic returns the topic for retry number retryCount (1-based).
func (t Topic) GetRetryTopic(retryCount int) (string, error) {
	if retryCount <= 0 || retryCount > len(RetryDelays) {
		return "", ErrMaxRetryExceeded
	}
	return t.retryTopic(retryCount), nil
}

func (t Topic) retryTopic(n int) string {
	return fmt.Sprintf("%s.retry.%d", t.base, n)
}

// ParseRetryDelayFromTopicName reads n from "<base>.retry.<n>" and returns
// RetryDelays[n-1].
func ParseRetryDelayFromTopicName(name string) (time.Duration, bool) {
	idx := strings.LastIndex(name, ".retry.")
	if idx == -1 || idx+7 >= len(name) {
		return 0, false
	}
	n, err := strconv.Atoi(name[idx+7:])
	if err != nil || n <= 0 || n > len(RetryDelays) {
		return 0, false
	}
	return RetryDelays[n-1], true
}

// Event is the Kafka message envelope.
type Event struct {
	ID        string          `json:"id"`
	Payload   json.RawMessage `json:"payload"`
	Retry     int             `json:"retry"`
	MaxRetry  int             `json:"max_retry"`
	LastError string          `json:"last_error,omitempty"`
}

type EventHandler func(ctx context.Context, event Event) error

type EventBus interface {
	Publish(ctx context.Context, topic string, event Event) error
	// Subscribe consumes the base topic and runs handler for each event.
	// Failed events go to the next retry topic, then to the DLQ.
	Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error
	// StartRetryReinjector moves due events from the retry topics back to
	// the base topic.
	StartRetryReinjector(ctx context.Context, groupID string, topic Topic) error
	Close()
}

var ErrMaxRetryExceeded = errors.New("max retry exceeded")

// nextDestination decides where a failed event goes. It bumps Retry when
// the event is scheduled for another attempt.
func nextDestination(topic Topic, evt *Event, handlerErr error) (dest string, dlq bool) {
	evt.LastError = handlerErr.Error()
	if evt.MaxRetry <= 0 || evt.MaxRetry > len(RetryDelays) {
		evt.MaxRetry = len(RetryDelays)
	}
	next := evt.Retry + 1
	if next > evt.MaxRetry {
		return topic.DLQ(), true
	}
	retryTopic, err := topic.GetRetryTopic(next)
	if err != nil {
		return topic.DLQ(), true
	}
	evt.Retry = next
	return retryTopic, false
}
