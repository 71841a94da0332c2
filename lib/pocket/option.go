package pocket

import "fmt"

// Option is a value that may be absent. It separates a missing key from a key
// holding the zero value of T.
type Option[T any] struct {
	value   T
	present bool
}

// Some returns a present Option holding value
func Some[T any](value T) Option[T] {
	return Option[T]{value: value, present: true}
}

// None returns an absent Option
func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the value and whether it is present
func (o Option[T]) Get() (T, bool) {
	return o.value, o.present
}

// IsPresent returns true if the Option holds a value
func (o Option[T]) IsPresent() bool {
	return o.present
}

// OrElse returns the value, or def if absent
func (o Option[T]) OrElse(def T) T {
	if o.present {
		return o.value
	}
	return def
}

func (o Option[T]) String() string {
	if !o.present {
		return "None"
	}
	return fmt.Sprintf("Some(%v)", o.value)
}
