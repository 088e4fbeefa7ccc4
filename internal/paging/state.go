// Package paging drives incremental lists: a Mediator reconciles page-keyed
// remote fetches with local storage, and a Pager exposes the result to a UI.
package paging

// LoadType is the direction of a load request
type LoadType int

const (
	// Refresh is a cold start or pull-to-refresh
	Refresh LoadType = iota
	// Prepend loads pages before the first loaded item
	Prepend
	// Append loads pages after the last loaded item
	Append
)

// String returns the load type name
func (t LoadType) String() string {
	switch t {
	case Refresh:
		return "refresh"
	case Prepend:
		return "prepend"
	case Append:
		return "append"
	default:
		return "unknown"
	}
}

// State is a snapshot of what the UI currently has loaded
type State[T any] struct {
	Pages          [][]T
	AnchorPosition *int // Most recently accessed index, nil before first access
}

// Len returns the number of loaded items
func (s State[T]) Len() int {
	n := 0
	for _, p := range s.Pages {
		n += len(p)
	}
	return n
}

// ClosestItemToPosition returns the loaded item at pos, clamped to the loaded range
func (s State[T]) ClosestItemToPosition(pos int) (T, bool) {
	var zero T
	n := s.Len()
	if n == 0 {
		return zero, false
	}
	if pos < 0 {
		pos = 0
	}
	if pos >= n {
		pos = n - 1
	}
	for _, p := range s.Pages {
		if pos < len(p) {
			return p[pos], true
		}
		pos -= len(p)
	}
	return zero, false
}

// FirstItem returns the first item of the first non-empty page
func (s State[T]) FirstItem() (T, bool) {
	for _, p := range s.Pages {
		if len(p) > 0 {
			return p[0], true
		}
	}
	var zero T
	return zero, false
}

// LastItem returns the last item of the last non-empty page
func (s State[T]) LastItem() (T, bool) {
	for i := len(s.Pages) - 1; i >= 0; i-- {
		if p := s.Pages[i]; len(p) > 0 {
			return p[len(p)-1], true
		}
	}
	var zero T
	return zero, false
}
