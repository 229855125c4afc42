package slices

func Find[T any](slice []T, f func(T) bool) (T, bool) {
	for _, item := range slice {
		if f(item) {
			return item, true
		}
	}

	return *new(T), false
}

func Map[T, U any](slice []T, f func(T) U) []U {
	mapped := make([]U, 0, len(slice))
	for _, item := range slice {
		mapped = append(mapped, f(item))
	}

	return mapped
}
