package crash

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaybeTriggerFiresOnce(t *testing.T) {
	var published []Record
	s := NewSimulator(WithPublisher(func(r Record) { published = append(published, r) }))

	assert.False(t, s.HasCrashed())

	first, fired := s.MaybeTrigger()
	require.True(t, fired)
	second, fired := s.MaybeTrigger()
	assert.False(t, fired)
	_, fired = s.MaybeTrigger()
	assert.False(t, fired)

	require.Len(t, published, 1)
	assert.Equal(t, first, published[0])
	assert.Equal(t, first, second)
	assert.Contains(t, Records, first)
	assert.True(t, s.HasCrashed())

	rec, ok := s.Record()
	assert.True(t, ok)
	assert.Equal(t, first, rec)
}

func TestRecordSetSize(t *testing.T) {
	assert.Len(t, Records, 5)
}

func TestSelectionCoversAllRecords(t *testing.T) {
	seen := make(map[string]bool)
	for seed := int64(0); seed < 200; seed++ {
		r, _ := NewSimulator(WithSource(rand.NewSource(seed))).MaybeTrigger()
		seen[r.Title] = true
	}
	assert.Len(t, seen, len(Records))
}

func TestSeededSelectionIsReproducible(t *testing.T) {
	a, _ := NewSimulator(WithSource(rand.NewSource(42))).MaybeTrigger()
	b, _ := NewSimulator(WithSource(rand.NewSource(42))).MaybeTrigger()
	assert.Equal(t, a, b)
}

func TestConcurrentTriggers(t *testing.T) {
	var (
		mu    sync.Mutex
		count int
		wg    sync.WaitGroup
	)
	s := NewSimulator(WithPublisher(func(Record) {
		mu.Lock()
		count++
		mu.Unlock()
	}))

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.MaybeTrigger()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, count)
}
