// Package mention expands @-mentioned notes and people into prompt context.
package mention

import (
	"context"
	"fmt"
	"strings"

	"ai-meetnotes/internal/entity"
	"ai-meetnotes/internal/pkg/logger"
	"ai-meetnotes/pkg/markup"
)

const (
	TypeNote  = "note"
	TypeHuman = "human"

	searchLimit     = 5
	examinedResults = 2
	excerptRunes    = 200
)

type Mention struct {
	ID    string `json:"id" validate:"required"`
	Type  string `json:"type" validate:"required,oneof=note human"`
	Label string `json:"label"`
}

// Source is the read side of the durable store. Lookups are scoped to userID
// and return (nil, nil) when the record does not exist or belongs to someone else.
type Source interface {
	GetUserSession(ctx context.Context, userID, id string) (*entity.Session, error)
	GetUserHuman(ctx context.Context, userID, id string) (*entity.Human, error)
	SearchSessions(ctx context.Context, userID, query string, limit int) ([]*entity.Session, error)
	ListParticipants(ctx context.Context, sessionID string) ([]*entity.Human, error)
}

type Resolver struct {
	source Source
	logger logger.ILogger
}

func NewResolver(source Source, logger logger.ILogger) *Resolver {
	return &Resolver{source: source, logger: logger}
}

// Resolve returns one block per mention that produced content, in input order.
// A mention that fails or has nothing to say is left out.
func (r *Resolver) Resolve(ctx context.Context, userID string, mentions []Mention) []string {
	blocks := make([]string, 0, len(mentions))
	for _, m := range mentions {
		var (
			block string
			err   error
		)
		switch m.Type {
		case TypeNote:
			block, err = r.resolveNote(ctx, userID, m)
		case TypeHuman:
			block, err = r.resolveHuman(ctx, userID, m)
		default:
			err = fmt.Errorf("unsupported mention type %q", m.Type)
		}

		if err != nil {
			r.logger.Warn("MENTION", "Failed to resolve mention", map[string]interface{}{
				"mention_id": m.ID,
				"type":       m.Type,
				"error":      err.Error(),
			})
			continue
		}
		if block != "" {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

func (r *Resolver) resolveNote(ctx context.Context, userID string, m Mention) (string, error) {
	sess, err := r.source.GetUserSession(ctx, userID, m.ID)
	if err != nil {
		return "", err
	}
	if sess == nil {
		return "", nil
	}

	content := noteBody(sess)
	if content == "" {
		return "", nil
	}
	return fmt.Sprintf("\n\n--- Content from the note %q ---\n%s", m.Label, content), nil
}

func (r *Resolver) resolveHuman(ctx context.Context, userID string, m Mention) (string, error) {
	human, err := r.source.GetUserHuman(ctx, userID, m.ID)
	if err != nil {
		return "", err
	}
	if human == nil {
		return "", nil
	}

	var sb strings.Builder
	writeField(&sb, "Name", human.FullName)
	writeField(&sb, "Email", human.Email)
	writeField(&sb, "Job Title", human.JobTitle)
	writeField(&sb, "LinkedIn", human.LinkedinUsername)

	if human.FullName != "" {
		// The person card is still useful when the cross-reference fails.
		if err := r.appendParticipations(ctx, &sb, userID, human); err != nil {
			r.logger.Warn("MENTION", "Failed to look up notes for person", map[string]interface{}{
				"human_id": human.Id.String(),
				"error":    err.Error(),
			})
		}
	}

	return fmt.Sprintf("\n\n--- Content about the person %q ---\n%s", m.Label, sb.String()), nil
}

func (r *Resolver) appendParticipations(ctx context.Context, sb *strings.Builder, userID string, human *entity.Human) error {
	sessions, err := r.source.SearchSessions(ctx, userID, human.FullName, searchLimit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		return nil
	}

	sb.WriteString("\nNotes this person participated in:\n")
	if len(sessions) > examinedResults {
		sessions = sessions[:examinedResults]
	}

	for _, sess := range sessions {
		participants, err := r.source.ListParticipants(ctx, sess.Id.String())
		if err != nil {
			return err
		}
		if !isParticipant(participants, human) {
			continue
		}

		title := sess.Title
		if title == "" {
			title = "Untitled"
		}
		excerpt := ""
		if body := noteBody(sess); body != "" {
			excerpt = markup.Truncate(markup.PlainText(body), excerptRunes) + "..."
		}
		fmt.Fprintf(sb, "- %q: %s\n", title, excerpt)
	}
	return nil
}

// A search hit only counts when the person is on the participant list.
func isParticipant(participants []*entity.Human, human *entity.Human) bool {
	for _, p := range participants {
		if p.FullName == human.FullName {
			return true
		}
		if human.Email != "" && p.Email == human.Email {
			return true
		}
	}
	return false
}

func noteBody(sess *entity.Session) string {
	if strings.TrimSpace(sess.EnhancedMemoHtml) != "" {
		return sess.EnhancedMemoHtml
	}
	if strings.TrimSpace(sess.RawMemoHtml) != "" {
		return sess.RawMemoHtml
	}
	return ""
}

func writeField(sb *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	sb.WriteString(name)
	sb.WriteString(": ")
	sb.WriteString(value)
	sb.WriteString("\n")
}
