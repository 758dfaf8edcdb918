package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/siv2r/chacha-xcheck/pkg/chacha20"
	"github.com/siv2r/chacha-xcheck/pkg/conformance"
	"github.com/siv2r/chacha-xcheck/pkg/vectors"
)

func runBench(keystream, encrypt, check bool, sizeStr, durationStr string, nvectors int) {
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("║      ChaCha20 Benchmark (64-bit nonce variant)           ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	if !keystream && !encrypt && !check {
		fmt.Println("No benchmarks specified. Use --keystream, --encrypt, or --check")
		fmt.Println("Run 'chacha-xcheck bench --help' for usage")
		os.Exit(1)
	}

	size := parseSize(sizeStr)
	duration := parseDuration(durationStr)

	if keystream {
		benchKeystream(size, duration)
		fmt.Println()
	}
	if encrypt {
		benchEncrypt(size, duration)
		fmt.Println()
	}
	if check {
		benchCheck(nvectors)
	}
}

const benchChunkSize = 64 * 1024

func benchKeys() ([]byte, uint64) {
	key := make([]byte, chacha20.KeySize)
	for i := range key {
		key[i] = byte(i)
	}
	return key, 0x0123456789abcdef
}

func benchKeystream(totalBytes int64, duration time.Duration) {
	fmt.Println("Benchmarking Keystream Generation")
	fmt.Println(strings.Repeat("─", 60))
	fmt.Printf("Target: %s over at most %v\n\n", formatSize(totalBytes), duration)

	key, nonce := benchKeys()
	cipher, err := chacha20.New(key, nonce)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	buf := make([]byte, benchChunkSize)
	blocksPerChunk := uint64(benchChunkSize / chacha20.BlockSize)

	var generated int64
	var counter uint64
	start := time.Now()
	lastProgress := start

	for generated < totalBytes && time.Since(start) < duration {
		cipher.XORKeyStream(buf, buf, counter)
		counter += blocksPerChunk
		generated += benchChunkSize

		if time.Since(lastProgress) >= time.Second {
			elapsed := time.Since(start)
			mbps := float64(generated) / elapsed.Seconds() / 1024 / 1024
			fmt.Printf("Progress: %s / %s (%.1f MB/s)\r",
				formatSize(generated), formatSize(totalBytes), mbps)
			lastProgress = time.Now()
		}
	}
	elapsed := time.Since(start)
	fmt.Println()

	mbps := float64(generated) / elapsed.Seconds() / 1024 / 1024
	fmt.Println("\nResults:")
	fmt.Printf("  Keystream generated: %s\n", formatSize(generated))
	fmt.Printf("  Time: %v\n", elapsed)
	fmt.Printf("  Throughput: %.2f MB/s\n", mbps)
	fmt.Printf("  Blocks: %.0f blocks/sec\n", float64(counter)/elapsed.Seconds())
	fmt.Println()
	printThroughputRating(mbps)
}

func benchEncrypt(totalBytes int64, duration time.Duration) {
	fmt.Println("Benchmarking Encryption (unpooled vs pooled buffers)")
	fmt.Println(strings.Repeat("─", 60))
	fmt.Printf("Target: %s per pass over at most %v\n\n", formatSize(totalBytes), duration)

	key, nonce := benchKeys()
	cipher, err := chacha20.New(key, nonce)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	plaintext := make([]byte, benchChunkSize)
	for i := range plaintext {
		plaintext[i] = byte(i % 256)
	}
	blocksPerChunk := uint64(benchChunkSize / chacha20.BlockSize)

	run := func(pooled bool) (int64, time.Duration) {
		var processed int64
		var counter uint64
		start := time.Now()
		for processed < totalBytes && time.Since(start) < duration {
			if pooled {
				out := cipher.EncryptPooled(plaintext, counter)
				chacha20.PutBuffer(out)
			} else {
				_ = cipher.Encrypt(plaintext, counter)
			}
			counter += blocksPerChunk
			processed += benchChunkSize
		}
		return processed, time.Since(start)
	}

	plainBytes, plainTime := run(false)
	plainMBps := float64(plainBytes) / plainTime.Seconds() / 1024 / 1024
	fmt.Printf("  Unpooled: %s in %v (%.2f MB/s)\n", formatSize(plainBytes), plainTime, plainMBps)

	pooledBytes, pooledTime := run(true)
	pooledMBps := float64(pooledBytes) / pooledTime.Seconds() / 1024 / 1024
	fmt.Printf("  Pooled:   %s in %v (%.2f MB/s)\n", formatSize(pooledBytes), pooledTime, pooledMBps)

	fmt.Println()
	if pooledMBps > plainMBps {
		fmt.Printf("Buffer pooling gain: %.1f%%\n", (pooledMBps/plainMBps-1)*100)
	} else {
		fmt.Printf("Buffer pooling gain: none at this chunk size\n")
	}
	fmt.Println()
	printThroughputRating(pooledMBps)
}

func benchCheck(nvectors int) {
	fmt.Printf("Benchmarking Conformance Runs (%d derived vectors)\n", nvectors)
	fmt.Println(strings.Repeat("─", 60))

	seed, err := vectors.NewSeed()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	table, err := vectors.Derive(seed, nvectors)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Seed: %x\n\n", seed)

	checker := conformance.New()
	for _, name := range conformance.Engines() {
		engine, err := conformance.NewEngine(name)
		if err != nil {
			fmt.Printf("  %s: unavailable (%v)\n", name, err)
			continue
		}

		start := time.Now()
		report, err := checker.Run(context.Background(), engine, table)
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("  %s: run failed (%v)\n", name, err)
			continue
		}

		status := "✓"
		if !report.Ok() {
			status = "⚠"
		}
		fmt.Printf("  %s %-10s %8.0f vectors/sec (%v total)\n",
			status, name, float64(nvectors)/elapsed.Seconds(), elapsed)
	}
}

func printThroughputRating(mbps float64) {
	if mbps > 1000 {
		fmt.Println("✓ Performance: Excellent (> 1000 MB/s)")
	} else if mbps > 500 {
		fmt.Println("✓ Performance: Good (> 500 MB/s)")
	} else if mbps > 200 {
		fmt.Println("✓ Performance: Acceptable (> 200 MB/s)")
	} else {
		fmt.Println("⚠ Performance: May need optimization (< 200 MB/s)")
	}
}

func parseSize(s string) int64 {
	// Simple parser for sizes like "100MB", "1GB"
	var value int64
	var unit string
	_, _ = fmt.Sscanf(s, "%d%s", &value, &unit)

	switch unit {
	case "KB", "kb", "K", "k":
		return value * 1024
	case "MB", "mb", "M", "m":
		return value * 1024 * 1024
	case "GB", "gb", "G", "g":
		return value * 1024 * 1024 * 1024
	default:
		return value
	}
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid duration: %s\n", s)
		os.Exit(1)
	}
	return d
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	units := []string{"KB", "MB", "GB", "TB"}
	return fmt.Sprintf("%.2f %s", float64(bytes)/float64(div), units[exp])
}
