package quality

import (
	"fmt"
	"strings"
)

// Summary renders the quality report text: one block per check plus the
// aggregate pass/fail counts.
func Summary(results []CheckResult) string {
	var b strings.Builder
	b.WriteString("=== Data Quality Check Summary ===\n")

	var passed int
	for _, r := range results {
		fmt.Fprintf(&b, "\nCheck: %s\nStatus: %s\nDetails: %s\n", r.CheckName, r.Status, r.Details)
		if r.Status == StatusPassed {
			passed++
		}
	}

	fmt.Fprintf(&b, "\nOverall Summary:\nTotal Checks: %d\nPassed: %d\nFailed: %d\n",
		len(results), passed, len(results)-passed)
	return b.String()
}
