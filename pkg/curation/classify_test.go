package curation

import (
	"reflect"
	"testing"
)

func ev(action string, policies ...string) Event {
	e := Event{Action: action}
	for _, p := range policies {
		e.Policies = append(e.Policies, Policy{PolicyName: p})
	}
	return e
}

func actionsOf(events []Event) []string {
	out := []string{}
	for _, e := range events {
		out = append(out, e.Action)
	}
	return out
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		page         Page
		counts       Tally
		blocked      int
		passed       int
		filteredActs []string
	}{
		{
			name:         "empty page",
			page:         Page{},
			counts:       Tally{},
			filteredActs: []string{},
		},
		{
			name: "mixed actions keep order",
			page: Page{
				Data: []Event{ev("approved"), ev("blocked", "license"), ev("passed"), ev("approved"), ev("blocked", "security")},
				Meta: Meta{NextOffset: 5, ResultCount: 5},
			},
			counts:       Tally{"approved": 2, "blocked": 2, "passed": 1},
			blocked:      2,
			passed:       1,
			filteredActs: []string{"blocked", "passed", "blocked"},
		},
		{
			name:         "unknown action is kept by the approved filter",
			page:         Page{Data: []Event{ev(ActionUnknown), ev("Approved"), ev("approved")}},
			counts:       Tally{"unknown": 1, "Approved": 1, "approved": 1},
			filteredActs: []string{"unknown", "Approved"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			c := Classify(tc.page)

			if !reflect.DeepEqual(c.ActionCounts, tc.counts) {
				t.Fatalf("counts: want %v, got %v", tc.counts, c.ActionCounts)
			}
			if c.ActionCounts.Total() != len(tc.page.Data) {
				t.Fatalf("count total %d != events %d", c.ActionCounts.Total(), len(tc.page.Data))
			}
			if len(c.Blocked) != tc.blocked || len(c.Blocked) != c.ActionCounts.Get(ActionBlocked) {
				t.Fatalf("blocked: want %d, got %d", tc.blocked, len(c.Blocked))
			}
			if len(c.Passed) != tc.passed {
				t.Fatalf("passed: want %d, got %d", tc.passed, len(c.Passed))
			}
			if got := actionsOf(c.Filtered.Data); !reflect.DeepEqual(got, tc.filteredActs) {
				t.Fatalf("filtered: want %v, got %v", tc.filteredActs, got)
			}
			if c.Filtered.Meta != tc.page.Meta {
				t.Fatalf("filtered page lost its meta: %+v", c.Filtered.Meta)
			}
		})
	}
}

func TestClassify_BlockedKeepsPolicies(t *testing.T) {
	c := Classify(Page{Data: []Event{ev("blocked", "license", "security")}})
	want := []Policy{{PolicyName: "license"}, {PolicyName: "security"}}
	if len(c.Blocked) != 1 || !reflect.DeepEqual(c.Blocked[0].Policies, want) {
		t.Fatalf("unexpected blocked events: %+v", c.Blocked)
	}
}
