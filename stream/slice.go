package stream

// Slice returns a publisher emitting the items in order and completing afterward. Every
// subscriber receives all the items. Items are delivered synchronously from within
// Request, so the publisher never outpaces the demand.
func Slice[T any](items ...T) Publisher[T] {
	return slicePublisher[T]{items: items}
}

type slicePublisher[T any] struct {
	items []T
}

func (p slicePublisher[T]) Subscribe(s Subscriber[T]) {
	sub := &sliceSubscription[T]{items: p.items, subscriber: s}
	s.OnSubscribe(sub)
}

type sliceSubscription[T any] struct {
	items      []T
	subscriber Subscriber[T]
	demand     int64
	emitting   bool
	done       bool
}

func (s *sliceSubscription[T]) Request(n int64) {
	if n <= 0 || s.done {
		return
	}

	s.demand = AddDemand(s.demand, n)
	if s.emitting {
		// re-entrant call from OnNext, the outer loop picks the new demand up
		return
	}

	s.emitting = true
	defer func() { s.emitting = false }()

	for s.demand > 0 && len(s.items) > 0 && !s.done {
		item := s.items[0]
		s.items = s.items[1:]
		if s.demand != Unbounded {
			s.demand--
		}

		s.subscriber.OnNext(item)
	}

	if len(s.items) == 0 && !s.done {
		s.done = true
		s.subscriber.OnComplete()
	}
}

func (s *sliceSubscription[T]) Cancel() {
	s.done = true
}
