package storage

import (
	"strings"
	"time"

	"github.com/sahilm/fuzzy"
)

// MessageMatch represents a search hit within a session
type MessageMatch struct {
	SessionID    string
	SessionTitle string
	MessageIndex int
	Role         string
	Content      string
	Preview      string
	Timestamp    time.Time
}

// SearchMessages does a case-insensitive substring search over every
// non-system message, sessions in recency order.
func (s *ChatStore) SearchMessages(query string) []MessageMatch {
	if query == "" {
		return []MessageMatch{}
	}

	queryLower := strings.ToLower(query)
	var matches []MessageMatch

	for _, summary := range s.ListSessionsByRecency() {
		session, err := s.GetSession(summary.ID)
		if err != nil {
			continue
		}

		for i, msg := range session.Messages {
			if msg.Role == RoleSystem {
				continue
			}

			if strings.Contains(strings.ToLower(msg.Content), queryLower) {
				preview := msg.Content
				if runes := []rune(preview); len(runes) > 100 {
					preview = string(runes[:100]) + "..."
				}

				matches = append(matches, MessageMatch{
					SessionID:    session.ID,
					SessionTitle: session.Title,
					MessageIndex: i,
					Role:         msg.Role,
					Content:      msg.Content,
					Preview:      preview,
					Timestamp:    msg.Timestamp,
				})
			}
		}
	}

	return matches
}

// FilterSessions fuzzy-matches titles. An empty query returns the list as is.
func FilterSessions(sessions []SessionSummary, query string) []SessionSummary {
	if query == "" {
		return sessions
	}

	targets := make([]string, len(sessions))
	for i, s := range sessions {
		targets[i] = s.Title
	}

	matches := fuzzy.Find(query, targets)
	filtered := make([]SessionSummary, len(matches))
	for i, match := range matches {
		filtered[i] = sessions[match.Index]
	}
	return filtered
}
