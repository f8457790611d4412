package bus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testObserver struct {
	publishCount   int
	deliveredCount int
	lastErr        error
}

func (o *testObserver) OnPublish(_ string, _ Event) {
	o.publishCount++
}

func (o *testObserver) OnDelivered(_ string, handlers int, err error, _ time.Duration) {
	o.deliveredCount += handlers
	o.lastErr = err
}

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	var got Event
	_, err := b.Subscribe("tree.tick", func(e Event) error {
		got = e
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(NewEvent("tree.tick", "guard", 7)))
	require.NotNil(t, got)
	assert.Equal(t, "guard", got.Source())
	assert.Equal(t, 7, got.Data())
	assert.NotEmpty(t, got.ID())
}

func TestWildcardReceivesEverything(t *testing.T) {
	b := New()
	var types []string
	_, err := b.Subscribe(Wildcard, func(e Event) error {
		types = append(types, e.Type())
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(NewEvent("tree.tick", "t", nil)))
	require.NoError(t, b.Publish(NewEvent("node.fault", "t", nil)))
	assert.Equal(t, []string{"tree.tick", "node.fault"}, types)
}

func TestHandlerErrorsAreJoined(t *testing.T) {
	b := New()
	errA := errors.New("a")
	errB := errors.New("b")
	_, _ = b.Subscribe("x", func(Event) error { return errA })
	_, _ = b.Subscribe("x", func(Event) error { return errB })

	err := b.Publish(NewEvent("x", "src", nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestCancelStopsDelivery(t *testing.T) {
	b := New()
	calls := 0
	sub, err := b.Subscribe("x", func(Event) error {
		calls++
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(NewEvent("x", "", nil)))
	require.NoError(t, b.Unsubscribe(sub))
	require.NoError(t, sub.Cancel())
	require.NoError(t, b.Publish(NewEvent("x", "", nil)))

	assert.Equal(t, 1, calls)
	assert.False(t, sub.IsActive())
	assert.NoError(t, b.Unsubscribe(nil))
}

func TestFiltersAndMetrics(t *testing.T) {
	b := New()
	obs := &testObserver{}
	b.AddObserver(obs)
	_, _ = b.Subscribe("x", func(Event) error { return nil })

	reject := func(Event) bool { return false }
	require.NoError(t, b.PublishWithFilters(NewEvent("x", "", nil), reject))
	require.NoError(t, b.Publish(NewEvent("x", "", nil)))

	m := b.GetMetrics()
	assert.EqualValues(t, 1, m.Published)
	assert.EqualValues(t, 1, m.DroppedByFilters)
	assert.EqualValues(t, 1, m.DeliveredHandlers)
	assert.EqualValues(t, 1, m.SubscribersActive)
	assert.Equal(t, 1, obs.publishCount)
	assert.Equal(t, 1, obs.deliveredCount)

	b.RemoveObserver(obs)
	require.NoError(t, b.Publish(NewEvent("x", "", nil)))
	assert.Equal(t, 1, obs.publishCount)
}

func TestRejectsNilInputs(t *testing.T) {
	b := New()
	assert.Error(t, b.Publish(nil))
	_, err := b.Subscribe("x", nil)
	assert.Error(t, err)
}
