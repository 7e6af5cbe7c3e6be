package service

import (
	"context"

	"ai-meetnotes/internal/dto"
	"ai-meetnotes/internal/pkg/logger"
	"ai-meetnotes/pkg/search"

	"github.com/google/uuid"
)

const (
	suggestionLimit   = 10
	searchResultLimit = 50
)

// Dates and tags have no backing tables; the search bar offers a fixed set.
var (
	dateSuggestions = []search.Suggestion{
		{ID: "today", Type: search.TypeDate, Name: "Today"},
		{ID: "yesterday", Type: search.TypeDate, Name: "Yesterday"},
		{ID: "last-week", Type: search.TypeDate, Name: "Last week"},
	}
	tagSuggestions = []search.Suggestion{
		{ID: "important", Type: search.TypeTag, Name: "important"},
		{ID: "todo", Type: search.TypeTag, Name: "todo"},
		{ID: "idea", Type: search.TypeTag, Name: "idea"},
	}
)

type ISearchService interface {
	Suggestions(ctx context.Context, userId uuid.UUID, value string) (*dto.SuggestionsResponse, error)
	Search(ctx context.Context, userId uuid.UUID, req *dto.SearchRequest) (*dto.SearchResponse, error)
}

type searchService struct {
	data   *DataStore
	logger logger.ILogger
}

func NewSearchService(data *DataStore, logger logger.ILogger) ISearchService {
	return &searchService{data: data, logger: logger}
}

func (s *searchService) Suggestions(ctx context.Context, userId uuid.UUID, value string) (*dto.SuggestionsResponse, error) {
	state := search.ParseInput(value)
	res := &dto.SuggestionsResponse{
		Trigger:     state.Trigger,
		Filter:      state.Filter,
		Suggestions: []search.Suggestion{},
	}

	switch state.Trigger {
	case search.TriggerMention:
		all := append([]search.Suggestion(nil), dateSuggestions...)

		humans, err := s.data.SearchHumans(ctx, userId.String(), state.Filter, suggestionLimit)
		if err != nil {
			return nil, err
		}
		for _, h := range humans {
			all = append(all, search.Suggestion{ID: h.Id.String(), Type: search.TypePeople, Name: h.FullName})
		}

		sessions, err := s.data.SearchSessions(ctx, userId.String(), state.Filter, suggestionLimit)
		if err != nil {
			return nil, err
		}
		for _, session := range sessions {
			name := session.Title
			if name == "" {
				name = "Untitled"
			}
			all = append(all, search.Suggestion{ID: session.Id.String(), Type: search.TypeNotes, Name: name})
		}

		res.Suggestions = search.FilterSuggestions(all, state.Filter)
	case search.TriggerTag:
		res.Suggestions = search.FilterSuggestions(tagSuggestions, state.Filter)
	}
	return res, nil
}

// Search runs the submitted query. People badges narrow the result to
// sessions that person took part in; note badges are always included.
func (s *searchService) Search(ctx context.Context, userId uuid.UUID, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	query := search.BuildQuery(req.Badges, req.Input)
	filters := search.ParseQuery(query)
	text := search.ParseQuery(req.Input).SearchQuery

	sessions, err := s.data.SearchSessions(ctx, userId.String(), text, searchResultLimit)
	if err != nil {
		return nil, err
	}

	people := map[string]bool{}
	var noteIDs []uuid.UUID
	for _, b := range req.Badges {
		switch b.Type {
		case search.TypePeople:
			people[b.ID] = true
		case search.TypeNotes:
			if id, err := uuid.Parse(b.ID); err == nil {
				noteIDs = append(noteIDs, id)
			}
		}
	}

	notes, err := s.data.OwnedSessions(ctx, userId, noteIDs)
	if err != nil {
		return nil, err
	}
	seen := map[uuid.UUID]bool{}
	var pinned []dto.SessionListItem
	for _, note := range notes {
		if !seen[note.Id] {
			seen[note.Id] = true
			pinned = append(pinned, toSessionListItem(note))
		}
	}

	res := &dto.SearchResponse{
		Query:    query,
		Mentions: filters.Mentions,
		Tags:     filters.Tags,
		Sessions: pinned,
	}
	for _, session := range sessions {
		if seen[session.Id] {
			continue
		}
		if len(people) > 0 {
			ok, err := s.hasParticipant(ctx, session.Id.String(), people)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		seen[session.Id] = true
		res.Sessions = append(res.Sessions, toSessionListItem(session))
	}
	if res.Sessions == nil {
		res.Sessions = []dto.SessionListItem{}
	}
	return res, nil
}

func (s *searchService) hasParticipant(ctx context.Context, sessionID string, people map[string]bool) (bool, error) {
	participants, err := s.data.ListParticipants(ctx, sessionID)
	if err != nil {
		return false, err
	}
	for _, p := range participants {
		if people[p.Id.String()] {
			return true, nil
		}
	}
	return false, nil
}
