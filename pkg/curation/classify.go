package curation

// Classification is what the classifier extracts from a single page.
type Classification struct {
	// Filtered holds the page without its approved events.
	Filtered     Page
	ActionCounts Tally
	Blocked      []Event
	Passed       []Event
}

// Classify buckets the events of a page by action. It never fails.
func Classify(page Page) Classification {
	c := Classification{
		Filtered:     Page{Meta: page.Meta, Data: make([]Event, 0, len(page.Data))},
		ActionCounts: Tally{},
	}

	for _, ev := range page.Data {
		c.ActionCounts.Add(ev.Action, 1)

		switch ev.Action {
		case ActionBlocked:
			c.Blocked = append(c.Blocked, ev)
		case ActionPassed:
			c.Passed = append(c.Passed, ev)
		}

		if ev.Action != ActionApproved {
			c.Filtered.Data = append(c.Filtered.Data, ev)
		}
	}

	return c
}
