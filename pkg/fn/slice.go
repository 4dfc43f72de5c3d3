package fn

// Map applies f to each element.
func Map[T, U any](items []T, f func(T) U) []U {
	out := make([]U, len(items))
	for i, v := range items {
		out[i] = f(v)
	}
	return out
}

// Filter returns elements where pred is true.
func Filter[T any](items []T, pred func(T) bool) []T {
	var out []T
	for _, v := range items {
		if pred(v) {
			out = append(out, v)
		}
	}
	return out
}

// UniqueBy returns elements with unique keys, preserving first-seen order.
func UniqueBy[T any, K comparable](items []T, key func(T) K) []T {
	seen := make(map[K]struct{})
	var out []T
	for _, v := range items {
		k := key(v)
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// CapBy keeps at most limit elements per key, preserving order. A limit of
// zero or less keeps everything.
func CapBy[T any, K comparable](items []T, limit int, key func(T) K) []T {
	if limit <= 0 {
		return items
	}
	counts := make(map[K]int)
	var out []T
	for _, v := range items {
		k := key(v)
		if counts[k] >= limit {
			continue
		}
		counts[k]++
		out = append(out, v)
	}
	return out
}
