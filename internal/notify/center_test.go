package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCenterFansOutToSubscribers(t *testing.T) {
	center := NewCenter(nil)

	first, cancelFirst := center.Subscribe()
	second, cancelSecond := center.Subscribe()
	defer cancelFirst()
	defer cancelSecond()

	center.Success("sample saved")

	got := <-first
	assert.Equal(t, LevelSuccess, got.Level)
	assert.Equal(t, "sample saved", got.Message)
	assert.NotEmpty(t, got.ID)

	got = <-second
	assert.Equal(t, "sample saved", got.Message)
}

func TestCenterDoesNotBlockOnSlowSubscriber(t *testing.T) {
	center := NewCenter(nil)

	_, cancel := center.Subscribe()
	defer cancel()

	// Overflow the subscriber buffer; Push must never stall.
	for i := 0; i < 100; i++ {
		center.Error("overflow")
	}
}

func TestCancelledSubscriberStopsReceiving(t *testing.T) {
	center := NewCenter(nil)

	ch, cancel := center.Subscribe()
	cancel()

	center.Info("after cancel")

	_, open := <-ch
	require.False(t, open)
}
