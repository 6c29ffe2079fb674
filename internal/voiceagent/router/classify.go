package router

import (
	"regexp"
	"slices"
	"strings"

	"github.com/autopeer-io/voxpeer/internal/voiceagent/model"
)

// Trigger words, English and Hindi-transliterated side by side. Order
// matters to DeriveQuery.
var (
	mediaTriggers  = []string{"play", "bajao", "song", "gaana", "music", "video", "youtube"}
	cameraTriggers = []string{"camera", "photo", "picture", "selfie", "tasveer", "khicho", "click"}

	triggerPatterns = compileTriggers(mediaTriggers, cameraTriggers)
)

func compileTriggers(groups ...[]string) map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp)
	for _, words := range groups {
		for _, w := range words {
			patterns[w] = triggerPattern(w)
		}
	}
	return patterns
}

func triggerPattern(word string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + regexp.QuoteMeta(word))
}

// Triggers returns a copy of the trigger words that select intent. The
// generic intent has none.
func Triggers(intent model.Intent) []string {
	switch intent {
	case model.IntentMediaSearch:
		return slices.Clone(mediaTriggers)
	case model.IntentCameraCapture:
		return slices.Clone(cameraTriggers)
	default:
		return nil
	}
}

// Classify picks the intent of text by case-insensitive substring match.
// Media triggers are tested before camera triggers, so a command carrying
// both is a media search.
func Classify(text string) model.Intent {
	lower := strings.ToLower(text)

	switch {
	case containsAny(lower, mediaTriggers):
		return model.IntentMediaSearch
	case containsAny(lower, cameraTriggers):
		return model.IntentCameraCapture
	default:
		return model.IntentGeneric
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// DeriveQuery removes every occurrence of each trigger from text, one
// trigger at a time and ignoring case, then trims surrounding whitespace.
// Inner whitespace is left as is.
func DeriveQuery(text string, triggers []string) string {
	query := text
	for _, t := range triggers {
		if t == "" {
			continue
		}
		re, ok := triggerPatterns[t]
		if !ok {
			re = triggerPattern(t)
		}
		query = re.ReplaceAllLiteralString(query, "")
	}
	return strings.TrimSpace(query)
}
