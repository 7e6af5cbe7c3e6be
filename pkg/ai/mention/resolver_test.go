package mention

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-meetnotes/internal/entity"
	"ai-meetnotes/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	sessions     map[string]*entity.Session
	humans       map[string]*entity.Human
	search       []*entity.Session
	searchErr    error
	participants map[string][]*entity.Human
	failSession  map[string]bool
	searchQuery  string
	searchLimit  int
	listed       []string
}

var owner = uuid.New()

func (f *fakeSource) GetUserSession(_ context.Context, userID, id string) (*entity.Session, error) {
	if f.failSession[id] {
		return nil, errors.New("db down")
	}
	sess := f.sessions[id]
	if sess == nil || sess.UserId.String() != userID {
		return nil, nil
	}
	return sess, nil
}

func (f *fakeSource) GetUserHuman(_ context.Context, userID, id string) (*entity.Human, error) {
	human := f.humans[id]
	if human == nil || human.UserId.String() != userID {
		return nil, nil
	}
	return human, nil
}

func (f *fakeSource) SearchSessions(_ context.Context, _ string, query string, limit int) ([]*entity.Session, error) {
	f.searchQuery, f.searchLimit = query, limit
	return f.search, f.searchErr
}

func (f *fakeSource) ListParticipants(_ context.Context, sessionID string) ([]*entity.Human, error) {
	f.listed = append(f.listed, sessionID)
	return f.participants[sessionID], nil
}

func session(title, raw, enhanced string) *entity.Session {
	return &entity.Session{Id: uuid.New(), UserId: owner, Title: title, RawMemoHtml: raw, EnhancedMemoHtml: enhanced}
}

func TestResolveNotes(t *testing.T) {
	enhanced := session("A", "<p>raw a</p>", "<p>enhanced a</p>")
	rawOnly := session("B", "<p>raw b</p>", "  ")
	empty := session("C", "", "")

	src := &fakeSource{
		sessions: map[string]*entity.Session{
			"a": enhanced, "b": rawOnly, "c": empty,
		},
		failSession: map[string]bool{"broken": true},
	}
	r := NewResolver(src, logger.NewNopLogger())

	blocks := r.Resolve(context.Background(), owner.String(), []Mention{
		{ID: "b", Type: TypeNote, Label: "Beta"},
		{ID: "broken", Type: TypeNote, Label: "Broken"},
		{ID: "c", Type: TypeNote, Label: "Empty"},
		{ID: "missing", Type: TypeNote, Label: "Gone"},
		{ID: "a", Type: TypeNote, Label: "Alpha"},
	})

	require.Len(t, blocks, 2)
	assert.Equal(t, "\n\n--- Content from the note \"Beta\" ---\n<p>raw b</p>", blocks[0])
	assert.Equal(t, "\n\n--- Content from the note \"Alpha\" ---\n<p>enhanced a</p>", blocks[1])
}

func TestResolveHumanWithParticipation(t *testing.T) {
	jane := &entity.Human{Id: uuid.New(), UserId: owner, FullName: "Jane Doe", Email: "jane@acme.io", JobTitle: "CTO"}

	long := "<p>" + strings.Repeat("x", 250) + "</p>"
	attended := session("Roadmap", "", long)
	notAttended := session("Hiring", "<p>Jane Doe was mentioned</p>", "")
	hits := []*entity.Session{
		notAttended,
		attended,
		session("3", "", ""), session("4", "", ""), session("5", "", ""),
	}

	src := &fakeSource{
		humans: map[string]*entity.Human{"p1": jane},
		search: hits,
		participants: map[string][]*entity.Human{
			attended.Id.String():    {{FullName: "Someone"}, {FullName: "J. Doe", Email: "jane@acme.io"}},
			notAttended.Id.String(): {{FullName: "Bob"}},
		},
	}
	r := NewResolver(src, logger.NewNopLogger())

	blocks := r.Resolve(context.Background(), owner.String(), []Mention{{ID: "p1", Type: TypeHuman, Label: "Jane"}})
	require.Len(t, blocks, 1)

	assert.Equal(t, "Jane Doe", src.searchQuery)
	assert.Equal(t, 5, src.searchLimit)
	assert.Len(t, src.listed, 2, "only the first two hits are examined")

	want := "\n\n--- Content about the person \"Jane\" ---\n" +
		"Name: Jane Doe\nEmail: jane@acme.io\nJob Title: CTO\n" +
		"\nNotes this person participated in:\n" +
		"- \"Roadmap\": " + strings.Repeat("x", 200) + "...\n"
	assert.Equal(t, want, blocks[0])
	assert.Equal(t, 1, strings.Count(blocks[0], "\n- "))
}

func TestResolveHumanSearchFailureKeepsCard(t *testing.T) {
	src := &fakeSource{
		humans:    map[string]*entity.Human{"p1": {Id: uuid.New(), UserId: owner, FullName: "Ann"}},
		searchErr: errors.New("timeout"),
	}
	blocks := NewResolver(src, logger.NewNopLogger()).Resolve(context.Background(), owner.String(), []Mention{
		{ID: "p1", Type: TypeHuman, Label: "Ann"},
		{ID: "x", Type: "folder", Label: "ignored"},
	})

	require.Len(t, blocks, 1)
	assert.Equal(t, "\n\n--- Content about the person \"Ann\" ---\nName: Ann\n", blocks[0])
}

func TestResolveNothing(t *testing.T) {
	r := NewResolver(&fakeSource{}, logger.NewNopLogger())
	assert.Empty(t, r.Resolve(context.Background(), owner.String(), nil))
}

func TestResolveSkipsOtherUsersRecords(t *testing.T) {
	stranger := uuid.New()
	secret := session("Acquisition", "<p>secret acquisition plan</p>", "")
	secret.UserId = stranger
	mine := session("Mine", "<p>my notes</p>", "")

	src := &fakeSource{
		sessions: map[string]*entity.Session{"secret": secret, "mine": mine},
		humans: map[string]*entity.Human{
			"contact": {Id: uuid.New(), UserId: stranger, FullName: "Eve", Email: "eve@corp.io"},
		},
	}
	blocks := NewResolver(src, logger.NewNopLogger()).Resolve(context.Background(), owner.String(), []Mention{
		{ID: "secret", Type: TypeNote, Label: "x"},
		{ID: "contact", Type: TypeHuman, Label: "Eve"},
		{ID: "mine", Type: TypeNote, Label: "Mine"},
	})

	require.Len(t, blocks, 1)
	assert.Equal(t, "\n\n--- Content from the note \"Mine\" ---\n<p>my notes</p>", blocks[0])
	assert.Empty(t, src.listed, "a foreign person is never cross-referenced")
}
