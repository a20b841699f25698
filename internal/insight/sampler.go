package insight

// Sample sorts insights by ascending score and selects an evenly spaced
// subsequence at the given interval. The first and last elements of the
// sorted sequence are always included. Returns the sampled insights and
// the parallel list of their zero-based positions in the sorted
// sequence, in increasing position order.
//
// Interior positions run interval, 2*interval, ... strictly below the
// last position, so the last position is never selected twice; a sample
// one interval before the end may still land directly adjacent to it.
func Sample(insights []Insight, interval int) ([]Insight, []int, error) {
	if interval < 1 {
		return nil, nil, ErrInvalidInterval
	}

	sorted := SortByScore(insights)
	n := len(sorted)

	if n == 0 {
		return []Insight{}, []int{}, nil
	}
	if n == 1 {
		return []Insight{sorted[0]}, []int{0}, nil
	}

	sampled := []Insight{sorted[0]}
	indices := []int{0}

	last := n - 1
	for i := interval; i < last; i += interval {
		sampled = append(sampled, sorted[i])
		indices = append(indices, i)
	}

	sampled = append(sampled, sorted[last])
	indices = append(indices, last)

	return sampled, indices, nil
}
