package repository

import (
	"strings"
	"testing"
)

func TestGetJobLeadQueryJoinsParentOrder(t *testing.T) {
	query := strings.ToLower(getJobLeadQuery)

	requiredFragments := []string{
		"from job_leads jl",
		"join job_orders j on j.id = jl.job_order_id",
		"where jl.id = $1",
		"j.manager_id",
		"j.branch_id",
	}

	for _, fragment := range requiredFragments {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected job lead query fragment %q to be present", fragment)
		}
	}
}

func TestJobOrderColumnsCarryNoDerivedProgress(t *testing.T) {
	if strings.Contains(strings.ToLower(jobOrderColumns), "progress") {
		t.Fatal("progress is derived from job leads and must never be a stored column")
	}
}
