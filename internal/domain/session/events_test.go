package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrokerFanOut(t *testing.T) {
	b := NewBroker(4)
	a, cancelA := b.Subscribe()
	c, cancelC := b.Subscribe()
	defer cancelC()

	b.Publish(Event{Type: EventMode})
	assert.Equal(t, EventMode, (<-a).Type)
	assert.Equal(t, EventMode, (<-c).Type)

	cancelA()
	cancelA()
	_, ok := <-a
	assert.False(t, ok)
	assert.Equal(t, 1, b.Subscribers())
}

func TestBrokerDropsForSlowSubscribers(t *testing.T) {
	b := NewBroker(2)
	ch, cancel := b.Subscribe()
	defer cancel()

	for i := 0; i < 10; i++ {
		b.Publish(Event{Type: EventFrame})
	}
	assert.Len(t, ch, 2)
}

func TestBrokerClose(t *testing.T) {
	b := NewBroker(1)
	ch, cancel := b.Subscribe()

	b.Close()
	b.Close()
	_, ok := <-ch
	assert.False(t, ok)
	cancel()

	late, _ := b.Subscribe()
	_, ok = <-late
	require.False(t, ok)
	b.Publish(Event{Type: EventMode})
}
