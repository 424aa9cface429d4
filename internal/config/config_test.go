package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/born-ml/convnets/internal/models"
	"github.com/born-ml/convnets/internal/nn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
model: googlenet
lr: 0.05
num_classes: 100
in_channels: 3
height: 64
width: 64
batch_size: 16
seed: 7
workers: 4
checkpoint: out/googlenet.safetensors
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Model:         "googlenet",
		HParams:       nn.HParams{LR: 0.05, NumClasses: 100},
		InputGeometry: nn.InputGeometry{Channels: 3, Height: 64, Width: 64},
		BatchSize:     16,
		Seed:          7,
		Workers:       4,
		Checkpoint:    "out/googlenet.safetensors",
	}, cfg)

	assert.Equal(t, models.Config{
		HParams: nn.HParams{LR: 0.05, NumClasses: 100},
		Input:   nn.InputGeometry{Channels: 3, Height: 64, Width: 64},
		Seed:    7,
	}, cfg.ModelConfig())
}

func TestLoadFillsModelDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "model: lenet\nbatch_size: 4\n"))
	require.NoError(t, err)

	assert.Equal(t, nn.InputGeometry{Channels: 1, Height: 32, Width: 32}, cfg.InputGeometry)
	assert.Equal(t, 10, cfg.NumClasses)
	assert.InDelta(t, 0.1, cfg.LR, 1e-12)
	assert.Equal(t, 4, cfg.BatchSize)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing model", "lr: 0.1\n", "model must be set"},
		{"unknown model", "model: alexnet\n", "unknown model"},
		{"unknown field", "model: lenet\nepochs: 10\n", "epochs"},
		{"bad type", "model: lenet\nheight: tall\n", "tall"},
		{"zero classes", "model: lenet\nnum_classes: 0\n", "num_classes"},
		{"negative lr", "model: googlenet\nlr: -1\n", "lr"},
		{"negative workers", "model: lenet\nworkers: -2\n", "workers"},
		{"zero batch", "model: lenet\nbatch_size: 0\n", "batch_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestApplyOverrides(t *testing.T) {
	cfg, err := Defaults("lenet")
	require.NoError(t, err)
	cfg.Seed = 3
	cfg.Checkpoint = "lenet.safetensors"

	require.NoError(t, cfg.ApplyOverrides(Overrides{
		Model:     "googlenet",
		Height:    128,
		BatchSize: 8,
		Workers:   2,
	}))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "googlenet", cfg.Model)
	assert.Equal(t, nn.InputGeometry{Channels: 1, Height: 128, Width: 96}, cfg.InputGeometry)
	assert.Equal(t, 8, cfg.BatchSize)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, int64(3), cfg.Seed, "model switch keeps run settings")
	assert.Equal(t, "lenet.safetensors", cfg.Checkpoint)

	// Zero overrides leave the config untouched.
	before := *cfg
	require.NoError(t, cfg.ApplyOverrides(Overrides{}))
	assert.Equal(t, before, *cfg)

	err = cfg.ApplyOverrides(Overrides{Model: "vgg"})
	assert.ErrorIs(t, err, models.ErrUnknownModel)
}

func TestParseIgnoresComments(t *testing.T) {
	cfg, err := Parse(strings.NewReader("# run\nmodel: lenet # classic\n"))
	require.NoError(t, err)
	assert.Equal(t, "lenet", cfg.Model)

	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())
}
