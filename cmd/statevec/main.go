// Package main provides the statevec CLI entry point.
package main

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/orneryd/statevec/pkg/chunk"
	"github.com/orneryd/statevec/pkg/config"
	"github.com/orneryd/statevec/pkg/gpu"
	"github.com/orneryd/statevec/pkg/parallel"
	"github.com/orneryd/statevec/pkg/simd"
)

var (
	version   = "0.1.0"
	commit    = "dev"
	buildTime = "unknown" // Set via ldflags: -X main.buildTime=$(date +%Y%m%d-%H%M%S)
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "statevec",
		Short: "statevec - chunked statevector memory management",
		Long: `statevec manages the memory backing large quantum statevector
simulations: fixed-size amplitude chunks spread across host memory and
accelerator devices, with SIMD-accelerated reductions, measurement
sampling, and checkpoint spill storage.`,
	}

	rootCmd.PersistentFlags().String("config", "", "Config file path (default: auto-detect)")

	// Version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("statevec v%s (%s) built %s\n", version, commit, buildTime)
		},
	})

	// Info command
	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Show detected hardware capabilities and configuration",
		RunE:  runInfo,
	}
	rootCmd.AddCommand(infoCmd)

	// Bench command
	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark chunk reductions and measurement sampling",
		RunE:  runBench,
	}
	benchCmd.Flags().Int("chunk-bits", 20, "log2 amplitudes per chunk")
	benchCmd.Flags().Int("shots", 1024, "Measurement samples per chunk")
	benchCmd.Flags().Int("workers", 0, "Worker pool size (0 = all CPUs)")
	rootCmd.AddCommand(benchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.FindConfigFile()
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	info := simd.Info()
	fmt.Printf("statevec v%s\n\n", version)
	fmt.Printf("SIMD:\n")
	fmt.Printf("  implementation: %s\n", info.Implementation)
	fmt.Printf("  accelerated:    %t\n", info.Accelerated)
	fmt.Printf("  features:       %v\n", info.Features)

	fmt.Printf("\nParallel:\n")
	workers := cfg.Parallel.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	fmt.Printf("  workers: %d\n", workers)

	mgr, err := gpu.NewManager(&gpu.Config{
		Enabled:         cfg.GPU.Enabled,
		Devices:         cfg.GPU.Devices,
		MaxMemoryMB:     cfg.GPU.MaxMemoryMB,
		FallbackOnError: cfg.GPU.FallbackOnError,
	})
	if err != nil {
		return err
	}
	fmt.Printf("\nGPU:\n")
	fmt.Printf("  backend: %s\n", mgr.Backend())
	for i := 0; i < mgr.DeviceCount(); i++ {
		dev, _ := mgr.Device(i)
		mem := "unlimited"
		if dev.MemoryMB > 0 {
			mem = fmt.Sprintf("%d MB", dev.MemoryMB)
		}
		fmt.Printf("  device %d: %s (%s)\n", dev.ID, dev.Name, mem)
	}

	fmt.Printf("\nCheckpoint:\n")
	fmt.Printf("  dir:       %s\n", cfg.Checkpoint.Dir)
	fmt.Printf("  encrypted: %t\n", len(cfg.Checkpoint.EncryptionKey) > 0)
	return nil
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	chunkBits, _ := cmd.Flags().GetInt("chunk-bits")
	shots, _ := cmd.Flags().GetInt("shots")
	workers, _ := cmd.Flags().GetInt("workers")
	if workers == 0 {
		workers = cfg.Parallel.Workers
	}

	eng := parallel.New(workers)
	c := chunk.NewHostContainer[complex128](&chunk.HostConfig{
		Engine:   eng,
		MaxBytes: cfg.Memory.HostMaxBytes,
	})
	if _, err := c.Allocate(chunk.SpaceHost, chunkBits, 1, 1, 0); err != nil {
		return fmt.Errorf("allocate 2^%d amplitudes: %w", chunkBits, err)
	}
	defer c.Deallocate()

	n := c.ChunkSize()
	rng := rand.New(rand.NewSource(1))
	norm := 0.0
	for i := 0; i < n; i++ {
		re, im := rng.Float64()-0.5, rng.Float64()-0.5
		c.Set(i, complex(re, im))
		norm += re*re + im*im
	}
	scale := complex(1.0/math.Sqrt(norm), 0)
	for i := 0; i < n; i++ {
		c.Set(i, c.Get(i)*scale)
	}

	fmt.Printf("chunk: 2^%d amplitudes, %d workers, simd=%s\n\n",
		chunkBits, eng.Workers(), simd.Info().Implementation)

	start := time.Now()
	total := c.Norm(0, 1, true)
	fmt.Printf("norm:           %12v  (result %.6f)\n", time.Since(start), real(total))

	start = time.Now()
	c.Zero(0, n)
	fmt.Printf("zero:           %12v\n", time.Since(start))

	// Rebuild a uniform distribution for sampling.
	p := complex(1.0/float64(n), 0)
	for i := 0; i < n; i++ {
		c.Set(i, p)
	}
	rnds := make([]float64, shots)
	for i := range rnds {
		rnds[i] = rng.Float64()
	}
	start = time.Now()
	samples := c.SampleMeasure(0, rnds, 1, false)
	fmt.Printf("sample_measure: %12v  (%d shots, first %d)\n",
		time.Since(start), len(samples), samples[0])
	return nil
}
