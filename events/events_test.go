package events

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

// TestEventPublishingAndSubscribing creates EventEmitter objects, subscribes EventHandler callbacks to them, and
// ensures that the events are received by the emitter's own and global subscribers.
func TestEventPublishingAndSubscribing(t *testing.T) {
	type operationEvent struct{ name string }
	type submissionEvent struct{}

	var calls, sends EventEmitter[operationEvent]
	var submissions EventEmitter[submissionEvent]

	var callCount, sendCount, submissionCount, globalOperationCount int
	calls.Subscribe(func(event operationEvent) error {
		callCount++
		return nil
	})
	sends.Subscribe(func(event operationEvent) error {
		sendCount++
		return nil
	})
	submissions.Subscribe(func(event submissionEvent) error {
		submissionCount++
		return nil
	})
	SubscribeAny(func(event operationEvent) error {
		globalOperationCount++
		return nil
	})

	for i := 0; i < 3; i++ {
		assert.NoError(t, calls.Publish(operationEvent{name: "call"}))
	}
	for i := 0; i < 2; i++ {
		assert.NoError(t, sends.Publish(operationEvent{name: "send"}))
	}
	assert.NoError(t, submissions.Publish(submissionEvent{}))

	assert.Equal(t, 3, callCount)
	assert.Equal(t, 2, sendCount)
	assert.Equal(t, 1, submissionCount)
	assert.Equal(t, 5, globalOperationCount)
}

// TestPublishReportsFirstError verifies a failing handler does not stop delivery and its error is returned.
func TestPublishReportsFirstError(t *testing.T) {
	type failingEvent struct{}
	var emitter EventEmitter[failingEvent]

	delivered := 0
	emitter.Subscribe(func(failingEvent) error {
		delivered++
		return errors.New("first")
	})
	emitter.Subscribe(func(failingEvent) error {
		delivered++
		return errors.New("second")
	})

	err := emitter.Publish(failingEvent{})
	assert.EqualError(t, err, "first")
	assert.Equal(t, 2, delivered)
}
