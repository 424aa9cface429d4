// Package main provides the convnets CLI.
//
// Usage:
//
//	convnets summary  [flags]   print the per-stage shape and parameter table
//	convnets forward  [flags]   run a random batch and report logits and latency
//	convnets save     [flags]   initialize a model and write a checkpoint
//	convnets load     [flags]   restore a checkpoint and run a forward pass
//	convnets version
//
// Every command except version takes -config (a YAML run configuration)
// plus flags overriding individual fields of it.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/born-ml/convnets/internal/backend/cpu"
	"github.com/born-ml/convnets/internal/config"
	"github.com/born-ml/convnets/internal/models"
	"github.com/born-ml/convnets/internal/nn"
	"github.com/born-ml/convnets/internal/parallel"
	"github.com/born-ml/convnets/internal/tensor"
)

const version = "v0.1.0"

type command struct {
	name  string
	usage string
	run   func(cfg *config.Config) error
}

var commands = []command{
	{"summary", "print the per-stage shape and parameter table", runSummary},
	{"forward", "run a random batch and report logits and latency", runForward},
	{"save", "initialize a model and write a checkpoint", runSave},
	{"load", "restore a checkpoint and run a forward pass", runLoad},
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("convnets: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	name := os.Args[1]
	if name == "version" {
		fmt.Printf("convnets %s\n", version)
		return
	}

	for _, c := range commands {
		if c.name != name {
			continue
		}
		cfg, err := parseFlags(c.name, os.Args[2:])
		if err != nil {
			log.Fatalf("%v", err)
		}
		if err := c.run(cfg); err != nil {
			log.Fatalf("%s: %v", c.name, err)
		}
		return
	}

	usage()
	os.Exit(2)
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: convnets <command> [flags]")
	fmt.Fprintln(os.Stderr, "\nCommands:")
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %-9s %s\n", c.name, c.usage)
	}
	fmt.Fprintf(os.Stderr, "  %-9s %s\n", "version", "print the version")
	fmt.Fprintln(os.Stderr, "\nRun 'convnets <command> -h' for command flags.")
}

// parseFlags builds the run configuration from -config and the override
// flags. Without -config the defaults of -model are used.
func parseFlags(name string, args []string) (*config.Config, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML config")
	model := fs.String("model", "", fmt.Sprintf("Model name %v (default lenet without -config)", models.Names()))
	lr := fs.Float64("lr", 0, "Learning rate")
	numClasses := fs.Int("num-classes", 0, "Number of output classes")
	inChannels := fs.Int("in-channels", 0, "Input channels")
	height := fs.Int("height", 0, "Input height")
	width := fs.Int("width", 0, "Input width")
	batchSize := fs.Int("batch-size", 0, "Batch size")
	seed := fs.Int64("seed", 0, "Weight init and input PRNG seed")
	workers := fs.Int("workers", 0, "CPU kernel workers (0 = one per CPU)")
	checkpoint := fs.String("checkpoint", "", "Checkpoint path")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	var (
		cfg *config.Config
		err error
	)
	if *cfgPath != "" {
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		cfg, err = config.Defaults("lenet")
		if err != nil {
			return nil, err
		}
	}

	err = cfg.ApplyOverrides(config.Overrides{
		Model:      *model,
		LR:         *lr,
		NumClasses: *numClasses,
		InChannels: *inChannels,
		Height:     *height,
		Width:      *width,
		BatchSize:  *batchSize,
		Seed:       *seed,
		Workers:    *workers,
		Checkpoint: *checkpoint,
	})
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newBackend(cfg *config.Config) *cpu.CPUBackend {
	if cfg.Workers == 0 {
		return cpu.New()
	}
	return cpu.NewWithConfig(parallel.WithWorkers(cfg.Workers))
}

func build(cfg *config.Config) (models.Classifier[*cpu.CPUBackend], *cpu.CPUBackend, error) {
	backend := newBackend(cfg)
	m, err := models.New(cfg.Model, cfg.ModelConfig(), backend)
	if err != nil {
		return nil, nil, err
	}
	return m, backend, nil
}

func runSummary(cfg *config.Config) error {
	m, _, err := build(cfg)
	if err != nil {
		return err
	}
	s, err := models.Summarize(m, cfg.InputGeometry.Shape(cfg.BatchSize))
	if err != nil {
		return err
	}
	fmt.Print(s)
	return nil
}

func runForward(cfg *config.Config) error {
	m, backend, err := build(cfg)
	if err != nil {
		return err
	}
	return forward(cfg, m, backend)
}

// forward runs one seeded random batch through m and reports the logits
// shape, the latency and the loss against random labels.
func forward(cfg *config.Config, m models.Classifier[*cpu.CPUBackend], backend *cpu.CPUBackend) error {
	shape := cfg.InputGeometry.Shape(cfg.BatchSize)
	if _, err := m.OutputShape(shape); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(cfg.Seed + 1)) //nolint:gosec // G404: synthetic inputs
	x := tensor.RandnWith[float32](rng, shape, backend)
	labels := make([]int, cfg.BatchSize)
	for i := range labels {
		labels[i] = rng.Intn(cfg.NumClasses)
	}

	start := time.Now()
	logits := m.Forward(x)
	elapsed := time.Since(start)

	loss := nn.CrossEntropy(nn.NewCrossEntropyLoss(), logits, labels)
	acc := nn.Accuracy(logits, labels)

	log.Printf("model=%s workers=%d input=%v logits=%v", m.Arch(), backend.Workers(), shape, logits.Shape())
	log.Printf("latency=%s (%.2f ms/sample)", elapsed, float64(elapsed.Microseconds())/1e3/float64(cfg.BatchSize))
	log.Printf("random-label loss=%.4f accuracy=%.3f", loss, acc)
	return nil
}

func runSave(cfg *config.Config) error {
	if cfg.Checkpoint == "" {
		return errors.New("-checkpoint is required")
	}
	m, _, err := build(cfg)
	if err != nil {
		return err
	}

	info, err := models.SaveCheckpoint(cfg.Checkpoint, m)
	if err != nil {
		return err
	}
	log.Printf("saved %s to %s: id=%s params=%d sha256=%s",
		info.Arch, cfg.Checkpoint, info.ID, info.NumParameters, info.Checksum)
	return nil
}

func runLoad(cfg *config.Config) error {
	if cfg.Checkpoint == "" {
		return errors.New("-checkpoint is required")
	}

	// The checkpoint's architecture, class count and input geometry decide
	// which model to build.
	info, err := models.ReadCheckpointInfo(cfg.Checkpoint)
	if err != nil {
		return err
	}
	if info.Arch != cfg.Model {
		if err := cfg.ApplyOverrides(config.Overrides{Model: info.Arch}); err != nil {
			return err
		}
	}
	mc := info.ModelConfig(cfg.ModelConfig())
	if mc.NumClasses != cfg.NumClasses || mc.Input != cfg.InputGeometry {
		log.Printf("using checkpoint geometry: classes=%d input=%dx%dx%d",
			mc.NumClasses, mc.Input.Channels, mc.Input.Height, mc.Input.Width)
	}
	cfg.NumClasses, cfg.InputGeometry = mc.NumClasses, mc.Input

	m, backend, err := build(cfg)
	if err != nil {
		return err
	}

	if _, err := models.LoadCheckpoint(cfg.Checkpoint, m); err != nil {
		return err
	}
	log.Printf("loaded %s from %s: id=%s params=%d", info.Arch, cfg.Checkpoint, info.ID, nn.NumParameters[*cpu.CPUBackend](m))
	return forward(cfg, m, backend)
}
