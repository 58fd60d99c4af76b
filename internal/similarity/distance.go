// Package similarity scores how far a corrected submission moved from the
// original, at line granularity.
package similarity

// Distance returns the line-level edit distance between a and b: the
// minimum number of whole-line insertions, deletions and substitutions.
// Lines are compared by exact string equality. Memory is O(min(len(a), len(b))).
func Distance(a, b []string) int {
	// строка dp по более короткой последовательности
	if len(b) > len(a) {
		a, b = b, a
	}
	n, m := len(a), len(b)
	if m == 0 {
		return n
	}
	dp := make([]int, m+1)
	for j := 0; j <= m; j++ {
		dp[j] = j
	}
	for i := 1; i <= n; i++ {
		prev := dp[0]
		dp[0] = i
		for j := 1; j <= m; j++ {
			tmp := dp[j]
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			dp[j] = min(dp[j]+1, dp[j-1]+1, prev+cost)
			prev = tmp
		}
	}
	return dp[m]
}
