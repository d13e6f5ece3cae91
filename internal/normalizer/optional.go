package normalizer

// Optional holds a value that may be absent. The zero value is absent.
type Optional[T any] struct {
	value T
	ok    bool
}

// Some wraps a present value
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

// Absent returns the explicit "no value" result
func Absent[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.ok
}

// IsPresent reports whether a value was read
func (o Optional[T]) IsPresent() bool {
	return o.ok
}

// OrElse returns the value, or def when absent
func (o Optional[T]) OrElse(def T) T {
	if !o.ok {
		return def
	}
	return o.value
}

// Ptr returns a pointer to a copy of the value, or nil when absent
func (o Optional[T]) Ptr() *T {
	if !o.ok {
		return nil
	}
	v := o.value
	return &v
}

// SafeGet runs a zero-argument accessor and converts any failure into Absent.
// Both returned errors and panics raised by the accessor are absorbed.
func SafeGet[T any](read func() (T, error)) (out Optional[T]) {
	if read == nil {
		return Absent[T]()
	}

	defer func() {
		if r := recover(); r != nil {
			out = Absent[T]()
		}
	}()

	v, err := read()
	if err != nil {
		return Absent[T]()
	}
	return Some(v)
}

// field reads one capability from an opaque source. A source that does not
// implement the capability C yields Absent, like a missing attribute.
func field[C any, T any](src any, get func(C) (T, error)) Optional[T] {
	c, ok := src.(C)
	if !ok {
		return Absent[T]()
	}
	return SafeGet(func() (T, error) {
		return get(c)
	})
}
