package eventbus

import "context"

// NoopBus drops every event. Used when events are disabled.
type NoopBus struct{}

func (NoopBus) Publish(context.Context, string, Event) error { return nil }

func (NoopBus) Subscribe(ctx context.Context, _ string, _ Topic, _ EventHandler) error {
	<-ctx.Done()
	return ctx.Err()
}

func (NoopBus) StartRetryReinjector(ctx context.Context, _ string, _ Topic) error {
	<-ctx.Done()
	return ctx.Err()
}

func (NoopBus) Close() {}
