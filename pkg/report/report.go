package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/sw33tLie/curaudit/pkg/curation"
	"github.com/sw33tLie/curaudit/pkg/sweep"
	"github.com/tidwall/pretty"
)

const blockedTotalKey = "blocked_total"

// Header explains how to read the summary. It is printed above the JSON document.
var Header = []string{
	"# This report shows the count of blocked packages grouped by policy_name.",
	"# blocked_total is the count of blocked packages.",
	"# Each count represents how many times a policy blocked a package during the audit period.",
	"# Note: Each package may be blocked by multiple policies, so blocked_total and the sum of policy counts will not match.",
}

type PolicyCount struct {
	Name  string
	Count int
}

// Summary is the audit digest. BlockedTotal and the sum of the policy counts are
// computed independently and are not expected to match.
type Summary struct {
	Approved     int
	BlockedTotal int
	Policies     []PolicyCount
}

// PolicyCounts counts every policy reference of every blocked event, in first-seen order.
func PolicyCounts(blocked []curation.Event) []PolicyCount {
	index := map[string]int{}
	var counts []PolicyCount
	for _, ev := range blocked {
		for _, p := range ev.Policies {
			i, ok := index[p.PolicyName]
			if !ok {
				i = len(counts)
				index[p.PolicyName] = i
				counts = append(counts, PolicyCount{Name: p.PolicyName})
			}
			counts[i].Count++
		}
	}
	return counts
}

func Build(agg *sweep.Aggregate) Summary {
	return Summary{
		Approved:     agg.ActionCounts.Get(curation.ActionApproved),
		BlockedTotal: len(agg.Blocked),
		Policies:     PolicyCounts(agg.Blocked),
	}
}

// blockedEntries returns the keys of the "blocked" object in output order.
// A policy named blocked_total replaces the total in place.
func (s Summary) blockedEntries() []PolicyCount {
	entries := []PolicyCount{{Name: blockedTotalKey, Count: s.BlockedTotal}}
	for _, p := range s.Policies {
		if p.Name == blockedTotalKey {
			entries[0].Count = p.Count
			continue
		}
		entries = append(entries, p)
	}
	return entries
}

// MarshalJSON keeps approved first, then blocked_total, then policies in first-seen order.
func (s Summary) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"approved":`)
	buf.WriteString(strconv.Itoa(s.Approved))
	buf.WriteString(`,"blocked":{`)
	for i, e := range s.blockedEntries() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, e.Name); err != nil {
			return nil, err
		}
		buf.WriteString(strconv.Itoa(e.Count))
	}
	buf.WriteString(`}}`)
	return buf.Bytes(), nil
}

// writeKey writes name as a JSON string followed by a colon. HTML characters are kept as is.
func writeKey(buf *bytes.Buffer, name string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(name); err != nil {
		return err
	}
	// Encode terminates the value with a newline.
	buf.Truncate(buf.Len() - 1)
	buf.WriteByte(':')
	return nil
}

// Indent renders the summary with two-space indentation and a trailing newline.
func (s Summary) Indent() ([]byte, error) {
	raw, err := s.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return pretty.PrettyOptions(raw, &pretty.Options{Width: 80, Indent: "  "}), nil
}

// WriteJSON writes only the JSON document.
func WriteJSON(w io.Writer, s Summary) error {
	out, err := s.Indent()
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// Write prints the human readable digest: a heading, the explanatory comments and the JSON document.
func Write(w io.Writer, s Summary, now time.Time) error {
	if _, err := fmt.Fprintln(w, curation.FormatCursor(now), "blocked packages by policy:"); err != nil {
		return err
	}
	for _, line := range Header {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return WriteJSON(w, s)
}
