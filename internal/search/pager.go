package search

// Page slices an ordered result list deterministically. Pages are
// 1-based; pageSize must be positive (validated at the query boundary).
// hasMore reports whether any items follow the returned slice.
func Page[T any](items []T, page, pageSize int) (slice []T, hasMore bool, total int) {
	total = len(items)
	from := (page - 1) * pageSize
	if from >= total {
		return nil, false, total
	}
	to := from + pageSize
	if to > total {
		to = total
	}
	return items[from:to], to < total, total
}
