package stream

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type stepSubscriber struct {
	sub   Subscription
	items []int
	done  bool
}

func (s *stepSubscriber) OnSubscribe(sub Subscription) { s.sub = sub }
func (s *stepSubscriber) OnNext(item int)              { s.items = append(s.items, item) }
func (s *stepSubscriber) OnError(error)                {}
func (s *stepSubscriber) OnComplete()                  { s.done = true }

func TestSlice(t *testing.T) {
	t.Run("unbounded", func(t *testing.T) {
		var c Collector[int]
		Slice(1, 2, 3).Subscribe(&c)
		require.Equal(t, []int{1, 2, 3}, c.Items)
		require.True(t, c.Completed)
		require.NoError(t, c.Err)
	})

	t.Run("honors demand", func(t *testing.T) {
		s := new(stepSubscriber)
		Slice(1, 2, 3).Subscribe(s)
		require.Empty(t, s.items)

		s.sub.Request(2)
		require.Equal(t, []int{1, 2}, s.items)
		require.False(t, s.done)

		s.sub.Request(1)
		require.Equal(t, []int{1, 2, 3}, s.items)
		require.True(t, s.done)
	})

	t.Run("cancel", func(t *testing.T) {
		s := new(stepSubscriber)
		Slice(1, 2, 3).Subscribe(s)
		s.sub.Request(1)
		s.sub.Cancel()
		s.sub.Request(5)
		require.Equal(t, []int{1}, s.items)
		require.False(t, s.done)
	})

	t.Run("empty", func(t *testing.T) {
		var c Collector[string]
		Slice[string]().Subscribe(&c)
		require.Empty(t, c.Items)
		require.True(t, c.Completed)
	})
}

func TestAddDemand(t *testing.T) {
	require.Equal(t, int64(3), AddDemand(1, 2))
	require.Equal(t, Unbounded, AddDemand(Unbounded, 1))
	require.Equal(t, Unbounded, AddDemand(Unbounded-1, 2))
}
