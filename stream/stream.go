// Package stream defines the producer/consumer contract the codec stages plug into: a
// publisher pushes items to a subscriber no faster than the subscriber requested them,
// and either side may terminate the exchange.
package stream

import "math"

// Unbounded is the demand meaning "as much as you have".
const Unbounded int64 = math.MaxInt64

// Subscription links a subscriber to its publisher.
type Subscription interface {
	// Request adds n to the number of items the subscriber is ready to receive.
	Request(n int64)
	// Cancel asks the publisher to stop. Items already in flight may still arrive.
	Cancel()
}

// Subscriber receives OnSubscribe first, then any number of OnNext and at most one
// terminal signal: either OnError or OnComplete.
type Subscriber[T any] interface {
	OnSubscribe(s Subscription)
	OnNext(item T)
	OnError(err error)
	OnComplete()
}

type Publisher[T any] interface {
	Subscribe(s Subscriber[T])
}

// AddDemand sums two demands, saturating at Unbounded.
func AddDemand(a, b int64) int64 {
	if a > Unbounded-b {
		return Unbounded
	}

	return a + b
}
