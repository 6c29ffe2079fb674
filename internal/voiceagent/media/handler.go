package media

import (
	"context"
	"fmt"
	"strings"

	"github.com/autopeer-io/voxpeer/internal/voiceagent/model"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/router"
	"github.com/autopeer-io/voxpeer/pkg/log"
)

const searchURL = "https://www.youtube.com/results?search_query="

// HandleSearch strips the trigger words from the command and opens a search
// for whatever is left.
func (m *Manager) HandleSearch(ctx context.Context, task model.Task) error {
	logger := log.WithValues("taskID", task.ID)

	m.update(logger, task.ID, model.TaskProcessing, "Searching for music...")
	m.busy.Begin()
	defer m.busy.End()

	query := router.DeriveQuery(task.Command, router.Triggers(model.IntentMediaSearch))
	if query == "" {
		m.update(logger, task.ID, model.TaskFailed, "Could not identify song name")
		m.hal.Speaker().Speak(ctx, "Please specify a song name")
		return nil
	}

	url := SearchURL(query)
	logger.Info("Opening search", "query", query, "url", url)
	if err := m.hal.Navigator().Open(ctx, url); err != nil {
		logger.Error(err, "Failed to open search page")
		m.update(logger, task.ID, model.TaskFailed, fmt.Sprintf("Could not open search page: %v", err))
		return nil
	}

	m.update(logger, task.ID, model.TaskCompleted, "Opening YouTube search for: "+query)
	m.hal.Speaker().Speak(ctx, "Opening YouTube to search for "+query)
	return nil
}

func (m *Manager) update(logger log.Logger, id string, status model.TaskStatus, result string) {
	if err := m.tracker.UpdateTask(id, status, result); err != nil {
		logger.Error(err, "Failed to update task", "status", status)
	}
}

// SearchURL builds the video search URL for query.
func SearchURL(query string) string {
	return searchURL + EncodeURIComponent(query)
}

// EncodeURIComponent percent-encodes s the way browsers encode a query
// component: every UTF-8 byte outside A-Z a-z 0-9 - _ . ! ~ * ' ( ) becomes
// %XX with upper-case hex. Unlike url.QueryEscape, space is %20 and
// ! ' ( ) * are kept.
func EncodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0F])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
