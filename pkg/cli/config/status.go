package config

import (
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/qoit/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// ResponseTimes is one status section of the defaults file
type ResponseTimes struct {
	EmailResponseTime string `toml:"email_response_time"`
	DMResponseTime    string `toml:"dm_response_time"`
	UrgentMethod      string `toml:"urgent_method"`
}

// StatusDefaultsFile maps a status mode to the response times applied when
// the owner selects it. Modes not listed keep their built-in defaults.
//
//	[focused]
//	email_response_time = "~4h"
//	dm_response_time = "~2h"
//	urgent_method = "Text"
type StatusDefaultsFile map[string]ResponseTimes

// Validate checks that every section names a known status
func (f StatusDefaultsFile) Validate() error {
	for name, rt := range f {
		mode, err := types.ParseStatusMode(name)
		if err != nil {
			return goerr.Wrap(ErrUnknownStatus, "unknown status section", goerr.V(StatusKey, name))
		}
		if rt == (ResponseTimes{}) {
			return goerr.Wrap(ErrInvalidConfig, "status section is empty", goerr.V(StatusKey, mode))
		}
	}
	return nil
}

// ToDomain merges the file over the built-in defaults. Fields left blank in
// the file keep the built-in value.
func (f StatusDefaultsFile) ToDomain() map[types.StatusMode]types.ResponseDefaults {
	result := make(map[types.StatusMode]types.ResponseDefaults, len(types.AllStatusModes()))
	for _, mode := range types.AllStatusModes() {
		result[mode] = mode.Defaults()
	}

	for name, rt := range f {
		mode, err := types.ParseStatusMode(name)
		if err != nil {
			continue
		}
		d := result[mode]
		if rt.EmailResponseTime != "" {
			d.EmailResponseTime = rt.EmailResponseTime
		}
		if rt.DMResponseTime != "" {
			d.DMResponseTime = rt.DMResponseTime
		}
		if rt.UrgentMethod != "" {
			d.UrgentMethod = rt.UrgentMethod
		}
		result[mode] = d
	}
	return result
}

// LoadStatusDefaults loads the status defaults from a TOML file
func LoadStatusDefaults(path string) (StatusDefaultsFile, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read status defaults", goerr.V(ConfigPathKey, path))
	}

	var file StatusDefaultsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, err.Error(), goerr.V(ConfigPathKey, path))
	}

	if err := file.Validate(); err != nil {
		return nil, goerr.Wrap(err, "status defaults validation failed", goerr.V(ConfigPathKey, path))
	}

	return file, nil
}

type StatusDefaults struct {
	path string
}

func (x *StatusDefaults) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "status-defaults",
			Usage:       "TOML file overriding the response times of each status",
			Category:    "Status",
			Destination: &x.path,
			Sources:     cli.EnvVars("QOIT_STATUS_DEFAULTS"),
		},
	}
}

func (x StatusDefaults) LogValue() slog.Value {
	return slog.GroupValue(slog.String("path", x.path))
}

// Configure returns the response-time defaults per status. Without a file
// the built-in defaults are returned.
func (x *StatusDefaults) Configure() (map[types.StatusMode]types.ResponseDefaults, error) {
	if x.path == "" {
		return StatusDefaultsFile{}.ToDomain(), nil
	}

	file, err := LoadStatusDefaults(x.path)
	if err != nil {
		return nil, err
	}
	return file.ToDomain(), nil
}
