package main

import (
	"path/filepath"
	"testing"

	"github.com/born-ml/convnets/internal/models"
	"github.com/born-ml/convnets/internal/nn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	cfg, err := parseFlags("forward", []string{"-model", "googlenet", "-num-classes", "5", "-height", "32", "-width", "32"})
	require.NoError(t, err)
	assert.Equal(t, "googlenet", cfg.Model)
	assert.Equal(t, 5, cfg.NumClasses)
	assert.Equal(t, nn.InputGeometry{Channels: 1, Height: 32, Width: 32}, cfg.InputGeometry)

	cfg, err = parseFlags("forward", nil)
	require.NoError(t, err)
	assert.Equal(t, "lenet", cfg.Model)

	_, err = parseFlags("forward", []string{"-model", "alexnet"})
	assert.ErrorIs(t, err, models.ErrUnknownModel)
}

func TestSaveLoadRestoresGeometry(t *testing.T) {
	tests := []struct {
		name     string
		saveArgs []string
		loadArgs []string
		want     nn.InputGeometry
	}{
		{
			name:     "googlenet with custom classes",
			saveArgs: []string{"-model", "googlenet", "-num-classes", "5", "-in-channels", "3", "-height", "32", "-width", "32"},
			loadArgs: []string{"-num-classes", "5"},
			want:     nn.InputGeometry{Channels: 3, Height: 32, Width: 32},
		},
		{
			name:     "flags left at defaults",
			saveArgs: []string{"-model", "googlenet", "-num-classes", "5", "-height", "32", "-width", "32"},
			want:     nn.InputGeometry{Channels: 1, Height: 32, Width: 32},
		},
		{
			name:     "lenet",
			saveArgs: []string{"-model", "lenet", "-num-classes", "3"},
			loadArgs: []string{"-model", "googlenet"},
			want:     nn.InputGeometry{Channels: 1, Height: 32, Width: 32},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "model.safetensors")

			saveCfg, err := parseFlags("save", append(tt.saveArgs, "-checkpoint", path))
			require.NoError(t, err)
			require.NoError(t, runSave(saveCfg))

			loadCfg, err := parseFlags("load", append(tt.loadArgs, "-checkpoint", path))
			require.NoError(t, err)
			require.NoError(t, runLoad(loadCfg))

			assert.Equal(t, saveCfg.Model, loadCfg.Model)
			assert.Equal(t, saveCfg.NumClasses, loadCfg.NumClasses)
			assert.Equal(t, tt.want, loadCfg.InputGeometry)
		})
	}
}

func TestSaveLoadRequireCheckpoint(t *testing.T) {
	cfg, err := parseFlags("save", nil)
	require.NoError(t, err)
	assert.Error(t, runSave(cfg))
	assert.Error(t, runLoad(cfg))
}
