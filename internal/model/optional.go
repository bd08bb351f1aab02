package model

// Optional holds a value that may be absent. The zero Optional is NoValue,
// which is distinct from a valid zero of T.
type Optional[T any] struct {
	V     T
	Valid bool
}

// Some wraps a present value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{V: v, Valid: true}
}

// NoValue returns an absent value of T.
func NoValue[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.V, o.Valid
}
