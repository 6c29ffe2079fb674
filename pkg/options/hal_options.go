package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

var _ IOptions = (*HALOptions)(nil)

const (
	CameraMock   = "mock"
	CameraDevice = "device"
	CameraNone   = "none"

	NavigatorBrowser = "browser"
	NavigatorLog     = "log"
)

// HALOptions selects the hardware behind the camera and navigator ports.
type HALOptions struct {
	// Camera is one of "mock", "device" or "none".
	Camera string `json:"camera" mapstructure:"camera"`

	// Device is the V4L2 capture device, e.g. /dev/video0.
	Device string `json:"device" mapstructure:"device"`

	// Width and Height are the MJPEG frame size requested from the device.
	Width  int `json:"width" mapstructure:"width"`
	Height int `json:"height" mapstructure:"height"`

	// DenyCamera makes the mock camera refuse access.
	DenyCamera bool `json:"deny-camera" mapstructure:"deny-camera"`

	// Navigator is "browser" or "log".
	Navigator string `json:"navigator" mapstructure:"navigator"`
}

func NewHALOptions() *HALOptions {
	return &HALOptions{
		Camera:    CameraMock,
		Device:    "/dev/video0",
		Width:     1280,
		Height:    720,
		Navigator: NavigatorLog,
	}
}

func (o *HALOptions) Validate() []error {
	errors := []error{}

	if !oneOf(o.Camera, CameraMock, CameraDevice, CameraNone) {
		errors = append(errors, fmt.Errorf("invalid --hal.camera %q, must be 'mock', 'device' or 'none'", o.Camera))
	}
	if o.Camera == CameraDevice && o.Device == "" {
		errors = append(errors, fmt.Errorf("--hal.device is required when --hal.camera=device"))
	}
	if o.Width <= 0 || o.Height <= 0 {
		errors = append(errors, fmt.Errorf("--hal.width and --hal.height must be greater than 0"))
	}
	if !oneOf(o.Navigator, NavigatorBrowser, NavigatorLog) {
		errors = append(errors, fmt.Errorf("invalid --hal.navigator %q, must be 'browser' or 'log'", o.Navigator))
	}

	return errors
}

func (o *HALOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Camera, "hal.camera", o.Camera, "Camera backend: 'mock', 'device' (V4L2) or 'none'.")
	fs.StringVar(&o.Device, "hal.device", o.Device, "Video device used by the 'device' camera.")
	fs.IntVar(&o.Width, "hal.width", o.Width, "Frame width requested from the device camera.")
	fs.IntVar(&o.Height, "hal.height", o.Height, "Frame height requested from the device camera.")
	fs.BoolVar(&o.DenyCamera, "hal.deny-camera", o.DenyCamera, "Make the mock camera deny access (for demos).")
	fs.StringVar(&o.Navigator, "hal.navigator", o.Navigator, "How search pages are opened: 'browser' or 'log'.")
}
