package app

import (
	"fmt"

	genericapiserver "k8s.io/apiserver/pkg/server"

	"github.com/autopeer-io/voxpeer/cmd/vpeer-agent/app/options"
	"github.com/autopeer-io/voxpeer/pkg/app"
)

const (
	commandName = "vpeer-agent"
	commandDesc = `The Voxpeer agent listens for spoken commands, classifies each one as
a media search, a camera capture or a generic request, and runs it as a
task. Transcripts come from the console or from a remote recognizer over
MQTT; task history and worker status are shown on the console and served
over HTTP.`
)

func NewApp() *app.App {
	opts := options.NewAgentOptions()
	application := app.NewApp(
		commandName,
		"Launch a Voxpeer voice command agent",
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithDefaultValidArgs(),
		app.WithRunFunc(run(opts)),
	)
	return application
}

func run(opts *options.AgentOptions) app.RunFunc {
	return func() error {
		ctx := genericapiserver.SetupSignalContext()

		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		agent, err := cfg.NewAgent()
		if err != nil {
			return fmt.Errorf("failed to create agent: %w", err)
		}

		return agent.Run(ctx)
	}
}
