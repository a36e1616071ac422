package contract

import (
	"testing"
	"time"

	"github.com/repotally/repotally/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validRawInput returns a raw input populated with defaults that pass validation.
func validRawInput(t *testing.T) *ConfigRawInput {
	t.Helper()
	return &ConfigRawInput{
		RepoPathStr:  t.TempDir(),
		Preset:       "standard",
		ModuleDepth:  DefaultModuleDepth,
		MaxRows:      DefaultMaxRows,
		MaxCommits:   DefaultMaxCommits,
		MaxFiles:     DefaultMaxCommitFiles,
		MinCoupling:  DefaultMinCoupling,
		Threshold:    DefaultThreshold,
		Shingle:      DefaultShingleSize,
		WindowBytes:  DefaultWindowBytes,
		Workers:      4,
		Output:       "text",
		StoreBackend: "sqlite",
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	cfg := &Config{}
	input := validRawInput(t)

	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, schema.StandardPreset, cfg.Preset)
	assert.Equal(t, schema.CollapseChildren, cfg.ChildrenMode)
	assert.Equal(t, schema.ModuleScope, cfg.SimilarityScope)
	assert.Equal(t, DefaultGitTimeout, cfg.GitTimeout)
	assert.NotEmpty(t, cfg.Excludes)
	assert.True(t, cfg.UseEmojis)
	assert.True(t, cfg.UseColors)
}

func TestProcessAndValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ConfigRawInput)
	}{
		{"unknown preset", func(in *ConfigRawInput) { in.Preset = "turbo" }},
		{"bad children mode", func(in *ConfigRawInput) { in.Children = "merge" }},
		{"zero module depth", func(in *ConfigRawInput) { in.ModuleDepth = 0 }},
		{"negative min code", func(in *ConfigRawInput) { in.MinCode = -5 }},
		{"zero max rows", func(in *ConfigRawInput) { in.MaxRows = 0 }},
		{"zero max commits", func(in *ConfigRawInput) { in.MaxCommits = 0 }},
		{"zero workers", func(in *ConfigRawInput) { in.Workers = 0 }},
		{"bad output", func(in *ConfigRawInput) { in.Output = "xml" }},
		{"bad scope", func(in *ConfigRawInput) { in.Scope = "planet" }},
		{"threshold above one", func(in *ConfigRawInput) { in.Threshold = 1.5 }},
		{"tiny shingle", func(in *ConfigRawInput) { in.Shingle = 1 }},
		{"bad timeout", func(in *ConfigRawInput) { in.GitTimeout = "soon" }},
		{"bad backend", func(in *ConfigRawInput) { in.StoreBackend = "oracle" }},
		{"mysql without connect", func(in *ConfigRawInput) { in.StoreBackend = "mysql" }},
		{"missing path", func(in *ConfigRawInput) { in.RepoPathStr = "/definitely/not/a/path" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			input := validRawInput(t)
			tt.mutate(input)
			assert.Error(t, ProcessAndValidate(cfg, input))
		})
	}
}

func TestProcessModuleRootsAndTimeout(t *testing.T) {
	cfg := &Config{}
	input := validRawInput(t)
	input.ModuleRoots = "crates, pkg/, "
	input.GitTimeout = "5s"

	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, []string{"crates", "pkg"}, cfg.ModuleRoots)
	assert.Equal(t, 5*time.Second, cfg.GitTimeout)
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{
		Preset:      schema.CIPreset,
		Excludes:    []string{"vendor/"},
		ModuleRoots: []string{"crates"},
	}

	clone := cfg.Clone()
	clone.Excludes[0] = "dist/"
	clone.ModuleRoots[0] = "pkg"

	assert.Equal(t, "vendor/", cfg.Excludes[0])
	assert.Equal(t, "crates", cfg.ModuleRoots[0])

	withPreset := cfg.CloneWithPreset(schema.FullPreset)
	assert.Equal(t, schema.FullPreset, withPreset.Preset)
	assert.Equal(t, schema.CIPreset, cfg.Preset)
}
