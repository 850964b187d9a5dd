package workers

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/mocks"
)

func TestEventFanout_DeliversToEverySink(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sink := mocks.NewMockEventSink(ctrl)
	sink1 := mocks.NewMockEventSink(ctrl)

	events := make(chan event.DomainEvent, 1)
	fanout := NewEventFanout(log, events, time.Second).Add(sink, sink1)

	done := make(chan struct{})
	count := 0
	// Given both sinks consume the broadcast event
	sink.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	sink1.EXPECT().Consume(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, evt event.DomainEvent) error {
			count++
			close(done)
			return nil
		}).Times(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = fanout.Run(ctx) }()

	// When an event lands on the channel
	events <- event.MessageAppended{Message: domain.Message{ID: 0, Username: "Alice", Text: "hello"}}

	// Then delivery happened before the deadline
	select {
	case <-done:
		req.Equal(1, count)
	case <-time.After(1 * time.Second):
		req.Fail("Sinks were not consumed in time")
	}
}

func TestEventFanout_SinkTimeout(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	slowSink := mocks.NewMockEventSink(ctrl)
	nextSink := mocks.NewMockEventSink(ctrl)

	sinkTimeout := 20 * time.Millisecond
	events := make(chan event.DomainEvent, 1)
	fanout := NewEventFanout(log, events, sinkTimeout).Add(slowSink, nextSink)

	// Given a sink stuck until its deadline fires
	slowSink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, evt event.DomainEvent) error {
			<-ctx.Done()     // Waiting for timeout to trigger cancellation
			return ctx.Err() // Sending back "context deadline exceeded"
		}).Times(1)

	// Then the next sink still gets the event
	done := make(chan struct{})
	nextSink.EXPECT().Consume(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, evt event.DomainEvent) error {
			close(done)
			return nil
		}).Times(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = fanout.Run(ctx) }()

	events <- event.MessageAppended{Message: domain.Message{ID: 1, Username: "Bob", Text: "slowpoke"}}

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		req.Fail("A slow sink starved the others")
	}
}

func TestEventFanout_FailingSinkDoesNotStopDelivery(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	failing := mocks.NewMockEventSink(ctrl)
	healthy := mocks.NewMockEventSink(ctrl)

	events := make(chan event.DomainEvent, 4)
	fanout := NewEventFanout(log, events, time.Second).Add(failing, healthy)

	failing.EXPECT().Consume(gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("disk on fire")).Times(2)

	delivered := make(chan struct{}, 2)
	healthy.EXPECT().Consume(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, evt event.DomainEvent) error {
			delivered <- struct{}{}
			return nil
		}).Times(2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = fanout.Run(ctx) }()

	events <- event.MessageAppended{Message: domain.Message{ID: 0, Username: "Alice", Text: "first"}}
	events <- event.MessageAppended{Message: domain.Message{ID: 1, Username: "Alice", Text: "second"}}

	for i := 0; i < 2; i++ {
		select {
		case <-delivered:
		case <-time.After(1 * time.Second):
			req.Fail("Healthy sink missed an event")
		}
	}
}
