package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

var _ IOptions = (*SpeechOptions)(nil)

const (
	SpeechSourceConsole = "console"
	SpeechSourceMQTT    = "mqtt"

	SpeakerLog  = "log"
	SpeakerMQTT = "mqtt"
)

// SpeechOptions selects where transcripts come from and where utterances go.
type SpeechOptions struct {
	// Source is the recognizer: "console" reads stdin lines, "mqtt" subscribes
	// to the transcript topic.
	Source string `json:"source" mapstructure:"source"`

	// Speaker is the synthesizer: "log" or "mqtt".
	Speaker string `json:"speaker" mapstructure:"speaker"`

	// Locale is attached to recognizer requests and utterances.
	Locale string `json:"locale" mapstructure:"locale"`

	// ListenOnStart starts ingesting transcripts without a toggle.
	ListenOnStart bool `json:"listen-on-start" mapstructure:"listen-on-start"`
}

func NewSpeechOptions() *SpeechOptions {
	return &SpeechOptions{
		Source:        SpeechSourceConsole,
		Speaker:       SpeakerLog,
		Locale:        "en-IN",
		ListenOnStart: true,
	}
}

func (o *SpeechOptions) Validate() []error {
	errors := []error{}

	if !oneOf(o.Source, SpeechSourceConsole, SpeechSourceMQTT) {
		errors = append(errors, fmt.Errorf("invalid --speech.source %q, must be 'console' or 'mqtt'", o.Source))
	}
	if !oneOf(o.Speaker, SpeakerLog, SpeakerMQTT) {
		errors = append(errors, fmt.Errorf("invalid --speech.speaker %q, must be 'log' or 'mqtt'", o.Speaker))
	}
	if o.Locale == "" {
		errors = append(errors, fmt.Errorf("--speech.locale must not be empty"))
	}

	return errors
}

func (o *SpeechOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Source, "speech.source", o.Source, "Transcript source: 'console' (stdin) or 'mqtt'.")
	fs.StringVar(&o.Speaker, "speech.speaker", o.Speaker, "Speech output: 'log' or 'mqtt'.")
	fs.StringVar(&o.Locale, "speech.locale", o.Locale, "Language tag used for recognition and synthesis.")
	fs.BoolVar(&o.ListenOnStart, "speech.listen-on-start", o.ListenOnStart, "Start listening immediately.")
}
