package entities

// Optional holds a value that may be absent. Locate calls return one so a
// soft miss (MustFind=false) is visible at the call site.
type Optional[T any] struct {
	value T
	ok    bool
}

// Some - wraps a present value
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

// None - returns an absent value
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.ok
}

func (o Optional[T]) IsPresent() bool {
	return o.ok
}

// OrElse returns the value, or def when absent.
func (o Optional[T]) OrElse(def T) T {
	if o.ok {
		return o.value
	}
	return def
}

// MustGet returns the value and panics when absent.
func (o Optional[T]) MustGet() T {
	if !o.ok {
		panic("entities: MustGet on an absent value")
	}
	return o.value
}
