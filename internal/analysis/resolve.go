package analysis

import (
	"strings"

	"github.com/KaramelBytes/churnlens-cli/internal/dataset"
)

// Candidate name lists used to locate well-known columns by role.
var (
	RoleAge          = []string{"age"}
	RoleAnnualAmount = []string{"curr_ann_amt", "current_annual_amount", "annual_amount", "curr ann amt"}
	RoleIncome       = []string{"income"}
	RoleCity         = []string{"city"}
	RoleOrgDate      = []string{"cust_org_date", "customer_org_date", "org_date", "cust org date"}
)

// ResolveColumn returns the first column whose key or label contains one of
// the candidates, case-insensitively. Candidates are tried in order, so an
// earlier candidate wins over a better match for a later one.
//
// Matching is by substring: "age" also matches "usage" or "page_views".
// Callers narrow the column list (numeric or categorical) before resolving.
func ResolveColumn(columns []dataset.Column, candidates ...string) (dataset.Column, bool) {
	for _, cand := range candidates {
		needle := strings.ToLower(cand)
		if needle == "" {
			continue
		}
		for _, c := range columns {
			if strings.Contains(strings.ToLower(c.Key), needle) || strings.Contains(strings.ToLower(c.Label), needle) {
				return c, true
			}
		}
	}
	return dataset.Column{}, false
}
