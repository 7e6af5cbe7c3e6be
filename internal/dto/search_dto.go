package dto

import "ai-meetnotes/pkg/search"

type SuggestionsResponse struct {
	Trigger     search.Trigger      `json:"trigger"`
	Filter      string              `json:"filter"`
	Suggestions []search.Suggestion `json:"suggestions"`
}

type SearchRequest struct {
	Badges []search.Badge `json:"badges" validate:"max=20"`
	Input  string         `json:"input"`
}

type SearchResponse struct {
	Query    string            `json:"query"`
	Mentions []string          `json:"mentions"`
	Tags     []string          `json:"tags"`
	Sessions []SessionListItem `json:"sessions"`
}
