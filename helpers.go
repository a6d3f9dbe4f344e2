package hxblog

import (
	"encoding/json"
	"net/http"
	"strings"
)

// IsHTMX reports whether the request was sent by HTMX. Cross-origin forms
// cannot set the header, so the registry requires it on mutations.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// BuildTriggerHeader formats events for HX-Trigger. Events without detail
// are sent as a comma-separated list; otherwise a JSON object keyed by event
// name is used, and a repeated name keeps its last detail.
func BuildTriggerHeader(events []TriggerEvent) string {
	if len(events) == 0 {
		return ""
	}

	plain := true
	for _, e := range events {
		if e.Detail != nil {
			plain = false
			break
		}
	}

	if plain {
		seen := make(map[string]bool, len(events))
		names := make([]string, 0, len(events))
		for _, e := range events {
			if !seen[e.Name] {
				seen[e.Name] = true
				names = append(names, e.Name)
			}
		}
		return strings.Join(names, ", ")
	}

	merged := make(map[string]any, len(events))
	for _, e := range events {
		if e.Detail == nil {
			merged[e.Name] = true
			continue
		}
		merged[e.Name] = e.Detail
	}
	data, err := json.Marshal(merged)
	if err != nil {
		return ""
	}
	return string(data)
}
