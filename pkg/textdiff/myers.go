package textdiff

type opKind int

const (
	opEqual opKind = iota
	opDelete
	opInsert
)

// op is a single-token edit operation.
type op struct {
	kind opKind
	tok  token
}

// diffTokens computes a minimal edit script between two token sequences
// using Myers' greedy O(ND) algorithm. The script length is proportional to
// the edit distance, which for document revisions is usually small relative
// to document size.
func diffTokens(a, b []token) []op {
	n, m := len(a), len(b)
	switch {
	case n == 0 && m == 0:
		return nil
	case n == 0:
		ops := make([]op, 0, m)
		for _, t := range b {
			ops = append(ops, op{kind: opInsert, tok: t})
		}
		return ops
	case m == 0:
		ops := make([]op, 0, n)
		for _, t := range a {
			ops = append(ops, op{kind: opDelete, tok: t})
		}
		return ops
	}

	return backtrack(a, b, shortestEdit(a, b))
}

// shortestEdit runs the forward pass, recording the furthest-reaching
// endpoints per diagonal at each depth for later backtracking.
func shortestEdit(a, b []token) [][]int {
	n, m := len(a), len(b)
	max := n + m
	offset := max + 1
	v := make([]int, 2*max+3)
	var trace [][]int

	for d := 0; d <= max; d++ {
		snapshot := make([]int, len(v))
		copy(snapshot, v)
		trace = append(trace, snapshot)

		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
				x = v[offset+k+1]
			} else {
				x = v[offset+k-1] + 1
			}
			y := x - k
			for x < n && y < m && a[x].text == b[y].text {
				x++
				y++
			}
			v[offset+k] = x
			if x >= n && y >= m {
				return trace
			}
		}
	}
	return trace
}

// backtrack walks the recorded trace from (n, m) back to the origin and
// emits the edit script in forward order.
func backtrack(a, b []token, trace [][]int) []op {
	n, m := len(a), len(b)
	offset := n + m + 1
	x, y := n, m

	var rev []op
	for d := len(trace) - 1; d >= 0 && (x > 0 || y > 0); d-- {
		v := trace[d]
		k := x - y

		var prevK int
		if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := v[offset+prevK]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			rev = append(rev, op{kind: opEqual, tok: a[x-1]})
			x--
			y--
		}

		if d > 0 {
			if x == prevX {
				rev = append(rev, op{kind: opInsert, tok: b[y-1]})
			} else {
				rev = append(rev, op{kind: opDelete, tok: a[x-1]})
			}
		}
		x, y = prevX, prevY
	}

	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}
