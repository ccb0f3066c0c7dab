package search

// orderByRank reorders items to follow a ranked ID list: ranked items first in
// rank order, then every item the ranking did not mention, in their original
// order. IDs unknown to the candidate set are ignored.
func orderByRank[T any](items []T, id func(T) string, ranked []string) []T {
	remaining := make(map[string]int, len(items))
	for i, item := range items {
		remaining[id(item)] = i
	}

	out := make([]T, 0, len(items))
	for _, rid := range ranked {
		if i, ok := remaining[rid]; ok {
			out = append(out, items[i])
			delete(remaining, rid)
		}
	}
	for _, item := range items {
		if _, ok := remaining[id(item)]; ok {
			out = append(out, item)
		}
	}
	return out
}
