package search

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestParseInput(t *testing.T) {
	tests := []struct {
		value string
		want  InputState
	}{
		{value: "", want: InputState{}},
		{value: "plain text", want: InputState{}},
		{value: "@ja", want: InputState{Trigger: TriggerMention, Filter: "ja"}},
		{value: "notes #to", want: InputState{Trigger: TriggerTag, Filter: "to"}},
		{value: "#todo @Jane", want: InputState{Trigger: TriggerMention, Filter: "Jane"}},
		{value: "@Jane #", want: InputState{Trigger: TriggerTag, Filter: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseInput(tt.value))
		})
	}
}

func TestBuildQuery(t *testing.T) {
	badges := []Badge{
		{Name: "Jane Smith", Prefix: TriggerMention},
		{Name: "todo", Prefix: TriggerTag},
	}
	assert.Equal(t, "@Jane Smith #todo budget", BuildQuery(badges, "budget"))
	assert.Equal(t, "@Jane Smith #todo", BuildQuery(badges, ""))
	assert.Equal(t, "budget", BuildQuery(nil, "budget"))
	assert.Equal(t, "", BuildQuery(nil, ""))
}

func TestFilterSuggestionsGroupsSections(t *testing.T) {
	all := []Suggestion{
		{ID: "n1", Type: TypeNotes, Name: "Meeting notes"},
		{ID: "p1", Type: TypePeople, Name: "Jane Smith"},
		{ID: "d1", Type: TypeDate, Name: "Today"},
		{ID: "p2", Type: TypePeople, Name: "John Doe"},
	}

	got := FilterSuggestions(all, "")
	want := []string{"d1", "p1", "p2", "n1"}
	var ids []string
	for _, s := range got {
		ids = append(ids, s.ID)
	}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	got = FilterSuggestions(all, "JO")
	assert.Equal(t, []Suggestion{{ID: "p2", Type: TypePeople, Name: "John Doe"}}, got)
	assert.Empty(t, FilterSuggestions(all, "zzz"))
}

func TestParseQuery(t *testing.T) {
	got := ParseQuery("@Jane #TODO budget  review @")
	want := Filters{
		Mentions:    []string{"Jane"},
		Tags:        []string{"todo"},
		SearchQuery: "budget review @",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseQuery mismatch (-want +got):\n%s", diff)
	}
}
