package curation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var ErrInvalidPage = errors.New("invalid audit page")

// ParsePage decodes a response body of the audit packages endpoint.
// Missing or malformed event fields never fail the page, they degrade to "unknown".
func ParsePage(body string) (Page, error) {
	if !gjson.Valid(body) {
		return Page{}, fmt.Errorf("%w: body is not valid JSON", ErrInvalidPage)
	}
	root := gjson.Parse(body)
	if !root.IsObject() {
		return Page{}, fmt.Errorf("%w: expected a JSON object", ErrInvalidPage)
	}

	var page Page

	data := root.Get("data")
	if data.Exists() && data.Type != gjson.Null {
		if !data.IsArray() {
			return Page{}, fmt.Errorf("%w: data is not an array", ErrInvalidPage)
		}
		items := data.Array()
		page.Data = make([]Event, 0, len(items))
		for _, item := range items {
			page.Data = append(page.Data, parseEvent(item))
		}
	}

	meta := root.Get("meta")
	if !meta.IsObject() {
		return Page{}, fmt.Errorf("%w: meta object missing", ErrInvalidPage)
	}

	nextOffset := meta.Get("next_offset")
	if !nextOffset.Exists() {
		return Page{}, fmt.Errorf("%w: meta.next_offset missing", ErrInvalidPage)
	}
	next, err := parseOffset(nextOffset)
	if err != nil {
		return Page{}, err
	}
	page.Meta.NextOffset = next

	if rc := meta.Get("result_count"); rc.Type == gjson.Number {
		page.Meta.ResultCount = int(rc.Int())
	} else {
		page.Meta.ResultCount = len(page.Data)
	}

	return page, nil
}

// parseOffset maps every falsy next_offset (null, false, 0, "") to 0.
func parseOffset(v gjson.Result) (int, error) {
	switch v.Type {
	case gjson.Null, gjson.False:
		return 0, nil
	case gjson.Number:
		return int(v.Int()), nil
	case gjson.String:
		if v.Str == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(v.Str)
		if err != nil {
			return 0, fmt.Errorf("%w: next_offset %q is not a number", ErrInvalidPage, v.Str)
		}
		return n, nil
	}
	return 0, fmt.Errorf("%w: unexpected next_offset %s", ErrInvalidPage, v.Raw)
}

// parseEvent copies every string it keeps: gjson results point into the page body,
// and blocked events outlive the page for the whole run.
func parseEvent(item gjson.Result) Event {
	ev := Event{Action: ActionUnknown}
	if !item.IsObject() {
		return ev
	}
	if action := item.Get("action"); action.Type == gjson.String {
		ev.Action = strings.Clone(action.Str)
	}
	if policies := item.Get("policies"); policies.IsArray() {
		for _, p := range policies.Array() {
			name := PolicyUnknown
			if n := p.Get("policy_name"); n.Type == gjson.String {
				name = strings.Clone(n.Str)
			}
			ev.Policies = append(ev.Policies, Policy{PolicyName: name})
		}
	}
	return ev
}
