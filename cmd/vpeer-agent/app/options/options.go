package options

import (
	"fmt"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	cliflag "k8s.io/component-base/cli/flag"

	"github.com/autopeer-io/voxpeer/internal/voiceagent"
	"github.com/autopeer-io/voxpeer/pkg/app"
	"github.com/autopeer-io/voxpeer/pkg/log"
	"github.com/autopeer-io/voxpeer/pkg/options"
)

type AgentOptions struct {
	HttpOptions     *options.HttpOptions     `json:"http" mapstructure:"http"`
	MqttOptions     *options.MqttOptions     `json:"mqtt" mapstructure:"mqtt"`
	S3Options       *options.S3Options       `json:"s3" mapstructure:"s3"`
	SpeechOptions   *options.SpeechOptions   `json:"speech" mapstructure:"speech"`
	HALOptions      *options.HALOptions      `json:"hal" mapstructure:"hal"`
	SnapshotOptions *options.SnapshotOptions `json:"snapshot" mapstructure:"snapshot"`
	ConsoleOptions  *options.ConsoleOptions  `json:"console" mapstructure:"console"`
	Log             *log.Options             `json:"log" mapstructure:"log"`
}

var (
	_ app.NamedFlagSetOptions = (*AgentOptions)(nil)
	_ app.LogOptionsProvider  = (*AgentOptions)(nil)
)

func NewAgentOptions() *AgentOptions {
	o := &AgentOptions{
		HttpOptions:     options.NewHttpOptions(),
		MqttOptions:     options.NewMqttOptions(),
		S3Options:       options.NewS3Options(),
		SpeechOptions:   options.NewSpeechOptions(),
		HALOptions:      options.NewHALOptions(),
		SnapshotOptions: options.NewSnapshotOptions(),
		ConsoleOptions:  options.NewConsoleOptions(),
		Log:             log.NewOptions(),
	}

	return o
}

func (o *AgentOptions) Flags() cliflag.NamedFlagSets {
	fss := cliflag.NamedFlagSets{}
	o.SpeechOptions.AddFlags(fss.FlagSet("speech"))
	o.HALOptions.AddFlags(fss.FlagSet("hal"))
	o.SnapshotOptions.AddFlags(fss.FlagSet("snapshot"))
	o.S3Options.AddFlags(fss.FlagSet("s3"))
	o.MqttOptions.AddFlags(fss.FlagSet("mqtt"))
	o.HttpOptions.AddFlags(fss.FlagSet("http"))
	o.ConsoleOptions.AddFlags(fss.FlagSet("console"))
	o.Log.AddFlags(fss.FlagSet("log"))
	return fss
}

func (o *AgentOptions) Complete() error {
	// The console view and console logs would fight over stdout.
	if o.ConsoleOptions.Enabled && o.SpeechOptions.Source == options.SpeechSourceConsole {
		o.Log.OutputPaths = replaceStdout(o.Log.OutputPaths)
	}
	return nil
}

func (o *AgentOptions) Validate() error {
	errs := []error{}
	errs = append(errs, o.HttpOptions.Validate()...)
	errs = append(errs, o.MqttOptions.Validate()...)
	errs = append(errs, o.SpeechOptions.Validate()...)
	errs = append(errs, o.HALOptions.Validate()...)
	errs = append(errs, o.SnapshotOptions.Validate()...)
	errs = append(errs, o.ConsoleOptions.Validate()...)
	errs = append(errs, o.Log.Validate()...)

	if o.SnapshotOptions.Backend == options.SnapshotS3 {
		errs = append(errs, o.S3Options.Validate()...)
	}
	if !o.MqttOptions.Enabled {
		if o.SpeechOptions.Source == options.SpeechSourceMQTT {
			errs = append(errs, fmt.Errorf("--speech.source=%s requires --mqtt.enabled", options.SpeechSourceMQTT))
		}
		if o.SpeechOptions.Speaker == options.SpeakerMQTT {
			errs = append(errs, fmt.Errorf("--speech.speaker=%s requires --mqtt.enabled", options.SpeakerMQTT))
		}
	}

	return utilerrors.NewAggregate(errs)
}

func (o *AgentOptions) LogOptions() *log.Options {
	return o.Log
}

func (o *AgentOptions) Config() (*voiceagent.Config, error) {
	return &voiceagent.Config{
		HttpOptions:     o.HttpOptions,
		MqttOptions:     o.MqttOptions,
		S3Options:       o.S3Options,
		SpeechOptions:   o.SpeechOptions,
		HALOptions:      o.HALOptions,
		SnapshotOptions: o.SnapshotOptions,
		ConsoleOptions:  o.ConsoleOptions,
	}, nil
}

func replaceStdout(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "stdout" {
			p = "stderr"
		}
		out = append(out, p)
	}
	return out
}
