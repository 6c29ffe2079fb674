package voiceagent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"
	"k8s.io/utils/clock"

	"github.com/autopeer-io/voxpeer/internal/pkg/mqtt/paths"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/assistant"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/camera"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/core"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/hal"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/hub"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/media"
	httpserver "github.com/autopeer-io/voxpeer/internal/voiceagent/server/http"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/speech"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/state"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/storage"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/view"
	"github.com/autopeer-io/voxpeer/pkg/log"
	"github.com/autopeer-io/voxpeer/pkg/mqtt"
	mqtttopic "github.com/autopeer-io/voxpeer/pkg/mqtt/topic"
	"github.com/autopeer-io/voxpeer/pkg/options"
)

const readyCheckTimeout = 3 * time.Second

type Config struct {
	HttpOptions     *options.HttpOptions
	MqttOptions     *options.MqttOptions
	S3Options       *options.S3Options
	SpeechOptions   *options.SpeechOptions
	HALOptions      *options.HALOptions
	SnapshotOptions *options.SnapshotOptions
	ConsoleOptions  *options.ConsoleOptions
}

func (cfg *Config) NewAgent() (*Agent, error) {
	aid := DiscoverAgentID()
	clk := clock.RealClock{}

	var h *hub.Hub
	if cfg.MqttOptions.Enabled {
		mqttClient, topicBuilder, err := cfg.initMqttClientAndTopicBuilder(aid)
		if err != nil {
			return nil, fmt.Errorf("failed to init mqtt client: %w", err)
		}
		h = hub.New(aid, mqttClient, topicBuilder, cfg.SpeechOptions.Locale, clk)
	}

	speaker, err := cfg.newSpeaker(h)
	if err != nil {
		return nil, err
	}
	recognizer, err := cfg.newRecognizer(h)
	if err != nil {
		return nil, err
	}
	sink, err := cfg.newSnapshotSink()
	if err != nil {
		return nil, fmt.Errorf("failed to init snapshot storage: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), readyCheckTimeout)
	defer cancel()
	if err := sink.CheckReady(ctx); err != nil {
		log.Warn("Snapshot storage is not ready yet", "backend", cfg.SnapshotOptions.Backend, "error", err)
	}

	systemHAL := hal.New(cfg.newCamera(), speaker, cfg.newNavigator(), sink)
	store := state.NewStore(clk)

	opts := []Option{WithListenOnStart(cfg.SpeechOptions.ListenOnStart)}
	if h != nil {
		opts = append(opts, WithHub(h, cfg.MqttOptions.PublishStatus))
	}
	if cfg.ConsoleOptions.Enabled {
		opts = append(opts, WithConsole(view.NewConsole(os.Stdout, store, cfg.ConsoleOptions.MaxTasks, cfg.ConsoleOptions.Throttle)))
	}

	agent := NewAgent(aid, store, systemHAL, recognizer, []core.Module{
		media.NewManager(),
		camera.NewManager(clk),
		assistant.NewManager(clk),
	}, opts...)

	if cfg.HttpOptions.Enabled {
		checks := []func() error{storageReady(sink)}
		if h != nil {
			checks = append(checks, func() error {
				if !h.IsConnected() {
					return errors.New("mqtt broker not connected")
				}
				return nil
			})
		}
		WithServers(httpserver.NewServer(cfg.HttpOptions, store, agent, checks...))(agent)
	}

	return agent, nil
}

func (cfg *Config) initMqttClientAndTopicBuilder(aid string) (mqtt.Client, *mqtttopic.Builder, error) {
	topicBuilder := mqtttopic.NewBuilder(cfg.MqttOptions.TopicRoot)

	mqttConfig := cfg.MqttOptions.ToClientConfig()
	if mqttConfig.ClientID == "" {
		mqttConfig.ClientID = fmt.Sprintf("vpeer-agent-%s", aid)
	}

	// No timestamp: subscribers rely on reception time for the will.
	offlinePayload, _ := json.Marshal(hub.OnlineStatus{
		AgentID: aid,
		Online:  false,
		Reason:  "UnexpectedDisconnect",
	})

	mqttConfig.WillTopic = topicBuilder.Build(paths.Online, aid)
	mqttConfig.WillPayload = offlinePayload
	mqttConfig.WillQoS = mqtt.AtLeastOnce
	mqttConfig.WillRetain = true

	mqttClient, err := mqtt.NewClient(mqttConfig)
	if err != nil {
		return nil, nil, err
	}

	return mqttClient, topicBuilder, nil
}

func (cfg *Config) newSpeaker(h *hub.Hub) (core.Speaker, error) {
	switch cfg.SpeechOptions.Speaker {
	case options.SpeakerMQTT:
		if h == nil {
			return nil, errors.New("--speech.speaker=mqtt requires --mqtt.enabled")
		}
		return h, nil
	default:
		return &hal.LogSpeaker{Locale: cfg.SpeechOptions.Locale}, nil
	}
}

func (cfg *Config) newRecognizer(h *hub.Hub) (speech.Recognizer, error) {
	switch cfg.SpeechOptions.Source {
	case options.SpeechSourceMQTT:
		if h == nil {
			return nil, errors.New("--speech.source=mqtt requires --mqtt.enabled")
		}
		return h, nil
	default:
		return speech.NewConsoleRecognizer(os.Stdin), nil
	}
}

func (cfg *Config) newCamera() core.Camera {
	switch cfg.HALOptions.Camera {
	case options.CameraDevice:
		return &hal.DeviceCamera{Device: cfg.HALOptions.Device, Width: uint32(cfg.HALOptions.Width), Height: uint32(cfg.HALOptions.Height)}
	case options.CameraNone:
		return hal.NoCamera{}
	default:
		return &hal.MockCamera{Deny: cfg.HALOptions.DenyCamera}
	}
}

func (cfg *Config) newNavigator() core.Navigator {
	if cfg.HALOptions.Navigator == options.NavigatorBrowser {
		return hal.BrowserNavigator{}
	}
	return hal.LogNavigator{}
}

func (cfg *Config) newSnapshotSink() (storage.Provider, error) {
	if cfg.SnapshotOptions.Backend == options.SnapshotS3 {
		return storage.NewMinIO(cfg.S3Options)
	}
	return storage.NewLocal(afero.NewOsFs(), cfg.SnapshotOptions.Dir), nil
}

func storageReady(p storage.Provider) func() error {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), readyCheckTimeout)
		defer cancel()
		return p.CheckReady(ctx)
	}
}
