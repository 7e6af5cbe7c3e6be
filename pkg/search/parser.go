package search

import (
	"sort"
	"strings"
)

type Trigger string

const (
	TriggerNone    Trigger = ""
	TriggerMention Trigger = "@"
	TriggerTag     Trigger = "#"
)

const (
	TypeDate    = "date"
	TypePeople  = "people"
	TypeOrgs    = "orgs"
	TypeNotes   = "notes"
	TypeFolders = "folders"
	TypeTag     = "tag"
)

// mentionOrder is the section order of the @ suggestion list.
var mentionOrder = map[string]int{
	TypeDate:    0,
	TypePeople:  1,
	TypeOrgs:    2,
	TypeNotes:   3,
	TypeFolders: 4,
}

type Suggestion struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Name string `json:"name"`
}

// Badge is a suggestion the user picked; it renders as prefix+name.
type Badge struct {
	ID     string  `json:"id"`
	Type   string  `json:"type"`
	Name   string  `json:"name"`
	Prefix Trigger `json:"prefix"`
}

// InputState is what the search box is currently completing.
type InputState struct {
	Trigger Trigger
	Filter  string
}

// ParseInput finds the active trigger. The later of the last "@" and the
// last "#" wins and everything after it is the filter.
func ParseInput(value string) InputState {
	at := strings.LastIndex(value, string(TriggerMention))
	hash := strings.LastIndex(value, string(TriggerTag))

	switch {
	case at >= 0 && at > hash:
		return InputState{Trigger: TriggerMention, Filter: value[at+1:]}
	case hash >= 0 && hash > at:
		return InputState{Trigger: TriggerTag, Filter: value[hash+1:]}
	}
	return InputState{}
}

// BuildQuery joins the badges and the free text into the query string.
func BuildQuery(badges []Badge, input string) string {
	parts := make([]string, 0, len(badges))
	for _, b := range badges {
		parts = append(parts, string(b.Prefix)+b.Name)
	}
	query := strings.Join(parts, " ")
	if input != "" {
		query += " " + input
	}
	return strings.TrimSpace(query)
}

// FilterSuggestions keeps the suggestions whose name contains filter, ignoring case.
// Mention suggestions come back grouped by section.
func FilterSuggestions(all []Suggestion, filter string) []Suggestion {
	needle := strings.ToLower(filter)
	out := make([]Suggestion, 0, len(all))
	for _, s := range all {
		if strings.Contains(strings.ToLower(s.Name), needle) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return mentionOrder[out[i].Type] < mentionOrder[out[j].Type]
	})
	return out
}

// Filters is a submitted query split into its parts.
type Filters struct {
	Mentions    []string
	Tags        []string
	SearchQuery string // remaining free text
}

// ParseQuery splits "@name" and "#tag" tokens off a submitted query.
func ParseQuery(raw string) Filters {
	filters := Filters{}
	var cleanParts []string

	for _, part := range strings.Fields(raw) {
		switch {
		case len(part) > 1 && strings.HasPrefix(part, string(TriggerMention)):
			filters.Mentions = append(filters.Mentions, strings.TrimPrefix(part, string(TriggerMention)))
		case len(part) > 1 && strings.HasPrefix(part, string(TriggerTag)):
			filters.Tags = append(filters.Tags, strings.ToLower(strings.TrimPrefix(part, string(TriggerTag))))
		default:
			cleanParts = append(cleanParts, part)
		}
	}

	filters.SearchQuery = strings.Join(cleanParts, " ")
	return filters
}
