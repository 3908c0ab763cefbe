package domain

import "testing"

func TestComputeProgress(t *testing.T) {
	cases := []struct {
		name    string
		total   int
		closed  int
		percent int
	}{
		{"no leads", 0, 0, 0},
		{"none closed", 4, 0, 0},
		{"all closed", 4, 4, 100},
		{"half closed", 4, 2, 50},
		{"rounds up", 3, 2, 67},
		{"rounds down", 3, 1, 33},
		{"single lead closed", 1, 1, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := ComputeProgress(tc.total, tc.closed)
			if p.Percentage != tc.percent {
				t.Fatalf("expected %d%%, got %d%%", tc.percent, p.Percentage)
			}
			if p.Total != tc.total || p.Closed != tc.closed {
				t.Fatalf("expected counts %d/%d, got %d/%d", tc.closed, tc.total, p.Closed, p.Total)
			}
		})
	}
}

func TestParseLeadStatus(t *testing.T) {
	for input, want := range map[string]LeadStatus{
		"PENDING":  LeadPending,
		"pending":  LeadPending,
		"CLOSED":   LeadClosed,
		" closed ": LeadClosed,
	} {
		got, err := ParseLeadStatus(input)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", input, err)
		}
		if got != want {
			t.Fatalf("expected %s for %q, got %s", want, input, got)
		}
	}

	if _, err := ParseLeadStatus("DONE"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}
