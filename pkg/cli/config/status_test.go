package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/qoit/pkg/cli/config"
	"github.com/secmon-lab/qoit/pkg/domain/types"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "status.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()
	return path
}

func TestLoadStatusDefaults(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name: "valid overrides",
			content: `
[focused]
email_response_time = "~6h"
urgent_method = "Signal"

[away]
dm_response_time = "Monday"
`,
		},
		{
			name:    "empty file",
			content: "",
		},
		{
			name: "unknown status",
			content: `
[napping]
email_response_time = "never"
`,
			wantErr: config.ErrUnknownStatus,
		},
		{
			name: "empty section",
			content: `
[qoit]
`,
			wantErr: config.ErrInvalidConfig,
		},
		{
			name:    "broken toml",
			content: `[focused`,
			wantErr: config.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.LoadStatusDefaults(writeFile(t, tt.content))
			if tt.wantErr != nil {
				gt.Error(t, err)
				gt.Bool(t, errors.Is(err, tt.wantErr)).True()
				return
			}
			gt.NoError(t, err)
		})
	}
}

func TestLoadStatusDefaults_MissingFile(t *testing.T) {
	_, err := config.LoadStatusDefaults(filepath.Join(t.TempDir(), "missing.toml"))
	gt.Error(t, err)
}

func TestStatusDefaults_Configure(t *testing.T) {
	t.Run("built-in defaults without a file", func(t *testing.T) {
		defaults, err := config.NewStatusDefaultsForTest("").Configure()
		gt.NoError(t, err).Required()
		gt.Number(t, len(defaults)).Equal(len(types.AllStatusModes()))
		gt.V(t, defaults[types.StatusFocused]).Equal(types.StatusFocused.Defaults())
	})

	t.Run("file overrides only the given fields", func(t *testing.T) {
		path := writeFile(t, `
[focused]
email_response_time = "~6h"
`)
		defaults, err := config.NewStatusDefaultsForTest(path).Configure()
		gt.NoError(t, err).Required()

		focused := defaults[types.StatusFocused]
		gt.Value(t, focused.EmailResponseTime).Equal("~6h")
		gt.Value(t, focused.DMResponseTime).Equal("~2h")
		gt.Value(t, focused.UrgentMethod).Equal("Text")
		gt.V(t, defaults[types.StatusQoit]).Equal(types.StatusQoit.Defaults())
	})
}
