// Package sequence tags requests so that responses arriving out of order can
// be recognized as stale and dropped.
//
// Cancellation is logical: a superseded request still runs to completion, but
// its response no longer matches the stream's current epoch and is ignored.
package sequence

// Tag identifies the epoch a request was issued in.
type Tag uint64

// Epoch is a monotonically increasing counter for one request stream. The zero
// value is ready to use and no request has been issued in it.
type Epoch struct {
	current Tag
}

// Next advances the stream and returns the tag for requests issued from now on.
func (e *Epoch) Next() Tag {
	e.current++
	return e.current
}

// Current returns the tag of the most recent epoch.
func (e Epoch) Current() Tag {
	return e.current
}

// Stale reports whether a response carrying tag has been superseded.
func (e Epoch) Stale(tag Tag) bool {
	return tag != e.current
}
