package stream

// Collector is a subscriber storing everything it receives. It requests an unbounded
// demand right on subscription.
type Collector[T any] struct {
	Items        []T
	Err          error
	Completed    bool
	Subscription Subscription
}

func (c *Collector[T]) OnSubscribe(s Subscription) {
	c.Subscription = s
	s.Request(Unbounded)
}

func (c *Collector[T]) OnNext(item T) {
	c.Items = append(c.Items, item)
}

func (c *Collector[T]) OnError(err error) {
	c.Err = err
}

func (c *Collector[T]) OnComplete() {
	c.Completed = true
}
