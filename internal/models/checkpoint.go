package models

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/born-ml/convnets/internal/nn"
	"github.com/born-ml/convnets/internal/serialization"
	"github.com/born-ml/convnets/internal/tensor"
	"github.com/google/uuid"
)

// Checkpoint metadata keys.
const (
	MetaArch          = "arch"
	MetaCheckpointID  = "checkpoint_id"
	MetaNumParameters = "num_parameters"
	MetaNumClasses    = "num_classes"
	MetaInChannels    = "in_channels"
	MetaHeight        = "height"
	MetaWidth         = "width"
)

// ErrArchMismatch is returned when a checkpoint is loaded into a model of
// a different architecture.
var ErrArchMismatch = errors.New("checkpoint architecture mismatch")

// CheckpointInfo describes a checkpoint file.
type CheckpointInfo struct {
	ID            uuid.UUID
	Arch          string
	NumParameters int
	NumClasses    int              // 0 if not recorded
	Input         nn.InputGeometry // zero if not recorded
	Checksum      string           // hex SHA-256 of the tensor data
	Metadata      map[string]string
}

// ModelConfig returns the construction parameters recorded in the
// checkpoint, falling back to base for anything missing.
func (info *CheckpointInfo) ModelConfig(base Config) Config {
	if info.NumClasses > 0 {
		base.NumClasses = info.NumClasses
	}
	if info.Input.Validate() == nil {
		base.Input = info.Input
	}
	return base
}

// SaveCheckpoint writes the weights of m to path in SafeTensors format.
// Each save is stamped with a fresh checkpoint id together with the class
// count and input geometry needed to rebuild m.
func SaveCheckpoint[B tensor.Backend](path string, m Classifier[B]) (*CheckpointInfo, error) {
	id := uuid.New()
	input := m.Input()
	metadata := map[string]string{
		MetaArch:          m.Arch(),
		MetaCheckpointID:  id.String(),
		MetaNumParameters: strconv.Itoa(nn.NumParameters[B](m)),
		MetaNumClasses:    strconv.Itoa(m.HParams().NumClasses),
		MetaInChannels:    strconv.Itoa(input.Channels),
		MetaHeight:        strconv.Itoa(input.Height),
		MetaWidth:         strconv.Itoa(input.Width),
	}

	if err := serialization.WriteFile(path, nn.StateDict[B](m), metadata); err != nil {
		return nil, fmt.Errorf("save checkpoint: %w", err)
	}
	return ReadCheckpointInfo(path)
}

// ReadCheckpointInfo reads and verifies the checkpoint at path without
// loading it into a model.
func ReadCheckpointInfo(path string) (*CheckpointInfo, error) {
	f, err := serialization.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}
	return checkpointInfo(f)
}

func checkpointInfo(f *serialization.File) (*CheckpointInfo, error) {
	meta := f.Metadata()
	info := &CheckpointInfo{
		Arch:     meta[MetaArch],
		Checksum: serialization.FormatChecksum(f.Checksum()),
		Metadata: meta,
	}
	if info.Arch == "" {
		return nil, fmt.Errorf("checkpoint: missing %q metadata", MetaArch)
	}
	// The reader only verifies files that carry a checksum.
	if _, ok := meta[serialization.ChecksumKey]; !ok {
		return nil, fmt.Errorf("checkpoint: missing %q metadata", serialization.ChecksumKey)
	}

	id, err := uuid.Parse(meta[MetaCheckpointID])
	if err != nil {
		return nil, fmt.Errorf("checkpoint: invalid %s: %w", MetaCheckpointID, err)
	}
	info.ID = id

	for _, field := range []struct {
		key string
		dst *int
	}{
		{MetaNumParameters, &info.NumParameters},
		{MetaNumClasses, &info.NumClasses},
		{MetaInChannels, &info.Input.Channels},
		{MetaHeight, &info.Input.Height},
		{MetaWidth, &info.Input.Width},
	} {
		v, ok := meta[field.key]
		if !ok {
			continue
		}
		if *field.dst, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("checkpoint: invalid %s: %w", field.key, err)
		}
	}
	return info, nil
}

// LoadCheckpoint restores the weights of m from the checkpoint at path.
//
// The file's checksum and architecture are verified, and the state dict
// must match m exactly. On error m is left unchanged.
func LoadCheckpoint[B tensor.Backend](path string, m Classifier[B]) (*CheckpointInfo, error) {
	f, err := serialization.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	info, err := checkpointInfo(f)
	if err != nil {
		return nil, err
	}
	if info.Arch != m.Arch() {
		return nil, fmt.Errorf("%w: file has %q, model is %q", ErrArchMismatch, info.Arch, m.Arch())
	}

	stateDict, err := f.StateDict()
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	if err := nn.LoadStateDict[B](m, stateDict); err != nil {
		return nil, fmt.Errorf("load checkpoint %s: %w", path, err)
	}
	return info, nil
}
