package console

// Cursor is the 1-based page of one list area.
type Cursor struct {
	Page int
}

// TotalPages returns ceil(n/size).
func TotalPages(n, size int) int {
	if size < 1 {
		size = 1
	}
	if n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// ClampPage clamps page into [1, max(1, TotalPages(n, size))].
func ClampPage(page, n, size int) int {
	last := max(1, TotalPages(n, size))
	return min(max(page, 1), last)
}

// Window returns the half-open index range [start, end) of the clamped page.
func Window(n, size, page int) (start, end int) {
	if size < 1 {
		size = 1
	}
	if n <= 0 {
		return 0, 0
	}
	p := ClampPage(page, n, size)
	start = (p - 1) * size
	end = min(start+size, n)
	return start, end
}
