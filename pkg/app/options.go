// Copyright 2025 The Voxpeer Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package app

import (
	cliflag "k8s.io/component-base/cli/flag"

	"github.com/autopeer-io/voxpeer/pkg/log"
)

// NamedFlagSetOptions is implemented by a command's option struct. Flags are
// grouped by section in the help output.
type NamedFlagSetOptions interface {
	// Flags returns the flag sets, one per section.
	Flags() cliflag.NamedFlagSets

	// Complete fills in fields derived from other fields.
	Complete() error

	// Validate checks the completed options.
	Validate() error
}

// LogOptionsProvider is implemented by options that carry logger settings.
// The logger is initialized from them before the run function starts.
type LogOptionsProvider interface {
	LogOptions() *log.Options
}
