package options

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		addr    string
		wantErr bool
	}{
		{"127.0.0.1:8470", false},
		{":8470", false},
		{"localhost:80", false},
		{"127.0.0.1", true},
		{"127.0.0.1:99999", true},
		{"127.0.0.1:http", true},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			err := ValidateAddress(tt.addr)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAddress(%q) error = %v, wantErr %v", tt.addr, err, tt.wantErr)
			}
		})
	}
}

func TestDefaultsAreValid(t *testing.T) {
	groups := map[string]IOptions{
		"http":     NewHttpOptions(),
		"mqtt":     NewMqttOptions(),
		"s3":       NewS3Options(),
		"speech":   NewSpeechOptions(),
		"hal":      NewHALOptions(),
		"snapshot": NewSnapshotOptions(),
		"console":  NewConsoleOptions(),
	}

	for name, o := range groups {
		if errs := o.Validate(); len(errs) != 0 {
			t.Errorf("%s defaults invalid: %v", name, errs)
		}
	}
}

func TestInvalidChoices(t *testing.T) {
	speech := NewSpeechOptions()
	speech.Source = "microphone"
	speech.Speaker = "tts"
	if errs := speech.Validate(); len(errs) != 2 {
		t.Errorf("speech: expected 2 errors, got %v", errs)
	}

	hal := NewHALOptions()
	hal.Camera = "device"
	hal.Device = ""
	hal.Navigator = "lynx"
	hal.Width = 0
	if errs := hal.Validate(); len(errs) != 3 {
		t.Errorf("hal: expected 3 errors, got %v", errs)
	}

	snap := NewSnapshotOptions()
	snap.Backend = "ftp"
	if errs := snap.Validate(); len(errs) != 1 {
		t.Errorf("snapshot: expected 1 error, got %v", errs)
	}

	h := NewHttpOptions()
	h.Network = "udp"
	h.Timeout = 0
	if errs := h.Validate(); len(errs) != 2 {
		t.Errorf("http: expected 2 errors, got %v", errs)
	}

	mq := NewMqttOptions()
	mq.Enabled = true
	mq.Broker = "http://broker:1883"
	if errs := mq.Validate(); len(errs) != 1 {
		t.Errorf("mqtt: expected 1 error, got %v", errs)
	}
}

func TestDisabledGroupsSkipValidation(t *testing.T) {
	h := NewHttpOptions()
	h.Enabled = false
	h.Addr = "nonsense"
	if errs := h.Validate(); len(errs) != 0 {
		t.Errorf("disabled http should not validate, got %v", errs)
	}

	mq := NewMqttOptions()
	mq.Broker = "::bad::"
	if errs := mq.Validate(); len(errs) != 0 {
		t.Errorf("disabled mqtt should not validate, got %v", errs)
	}
}

func TestAddFlagsOverrides(t *testing.T) {
	o := NewHALOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.AddFlags(fs)

	if err := fs.Parse([]string{"--hal.camera=none", "--hal.navigator=browser"}); err != nil {
		t.Fatal(err)
	}
	if o.Camera != CameraNone || o.Navigator != NavigatorBrowser {
		t.Errorf("flags not applied: %+v", o)
	}
}
