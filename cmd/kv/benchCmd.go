package kv

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/pocket/cmd/util"
	"github.com/ValentinKolb/pocket/lib/common"
	"github.com/ValentinKolb/pocket/lib/pocket"
	"github.com/ValentinKolb/pocket/lib/storage"
	"github.com/ValentinKolb/pocket/lib/storage/metered"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	benchCmd = &cobra.Command{
		Use:     "bench",
		Short:   "Performance testing tool for the configured pocket",
		Long:    util.WrapString("Runs put, get, contains and delete benchmarks against the configured pocket (serializer, encryption, cache and executor included). All keys are written below the bench/ prefix and removed afterwards."),
		Args:    cobra.NoArgs,
		RunE:    runBench,
		PreRunE: processBenchConfig,
	}
	benchKeyPrefix        = "bench"
	benchLargeValueSizeKB = 100
	benchNumThreads       = 10
	benchKeySpread        = 100
	benchSkip             = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	benchCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. put,get)"))
	key = "threads"
	benchCmd.Flags().Int(key, 10, util.WrapString("Number of goroutines per cpu to use for the benchmark"))
	key = "large-value-size"
	benchCmd.Flags().Int(key, 100, util.WrapString("How large the value for the put-large test should be (in KB)"))
	key = "keys"
	benchCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	benchCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
	key = "metrics"
	benchCmd.Flags().Bool(key, false, util.WrapString("Print the storage metrics in the prometheus text format after the run"))
}

func processBenchConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	benchLargeValueSizeKB = viper.GetInt("large-value-size")
	benchKeySpread = viper.GetInt("keys")
	benchNumThreads = viper.GetInt("threads")
	benchSkip = strings.Split(viper.GetString("skip"), ",")

	if benchKeySpread < 1 {
		return fmt.Errorf("keys must be at least 1")
	}
	if benchNumThreads < 1 {
		return fmt.Errorf("threads must be at least 1")
	}
	return nil
}

// benchCase is one benchmark, op is called with the key for the current iteration
type benchCase struct {
	name    string
	prepare bool // store all keys before the timer starts
	op      func(ctx context.Context, p pocket.IPocket[string], key string) error
}

func runBench(cmd *cobra.Command, _ []string) error {
	var meter *metered.MeteredStorage
	rt, err := util.OpenPocket(conf, &util.Options{
		WrapStorage: func(s storage.IStorage) storage.IStorage {
			meter = metered.NewMeteredStorage(s, nil)
			return meter
		},
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			Logger.Warningf("could not close pocket: %v", err)
		}
	}()

	fmt.Println("Performance testing tool for pocket")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(conf.String())
	fmt.Printf("Threads: %d\n", benchNumThreads)
	fmt.Println()

	fmt.Println("starting tests...")

	largeValue := strings.Repeat("x", benchLargeValueSizeKB*1024)
	cases := []benchCase{
		{name: "put", op: func(ctx context.Context, p pocket.IPocket[string], key string) error {
			return p.Put(ctx, key, "test")
		}},
		{name: "put-large", op: func(ctx context.Context, p pocket.IPocket[string], key string) error {
			return p.Put(ctx, key, largeValue)
		}},
		{name: "get", prepare: true, op: func(ctx context.Context, p pocket.IPocket[string], key string) error {
			_, _, err := p.Get(ctx, key)
			return err
		}},
		{name: "contains", prepare: true, op: func(ctx context.Context, p pocket.IPocket[string], key string) error {
			_, err := p.Contains(ctx, key)
			return err
		}},
		{name: "contains-not", op: func(ctx context.Context, p pocket.IPocket[string], key string) error {
			_, err := p.Contains(ctx, key)
			return err
		}},
		{name: "delete", prepare: true, op: func(ctx context.Context, p pocket.IPocket[string], key string) error {
			return p.Delete(ctx, key)
		}},
	}

	// Create results map
	results := make(map[string]testing.BenchmarkResult)
	for _, c := range cases {
		result := runBenchCase(cmd.Context(), rt.Pocket, c)
		results[c.name] = result
		printResult(c.name, result)
	}

	if show, _ := cmd.Flags().GetBool("metrics"); show {
		fmt.Println()
		meter.WritePrometheus(os.Stdout)
	}

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, conf); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

func runBenchCase(ctx context.Context, p pocket.IPocket[string], c benchCase) testing.BenchmarkResult {
	return testing.Benchmark(func(b *testing.B) {
		if shouldSkip(c.name) {
			return
		}

		// prepare keys
		getKey, iter := getKeys(c.name)

		if c.prepare {
			iter(func(k string) {
				if err := p.Put(ctx, k, "test"); err != nil {
					Logger.Errorf("(%s) - error putting key: %v", c.name, err)
				}
			})
		}

		// cleanup
		b.Cleanup(func() {
			iter(func(k string) {
				if err := p.Delete(ctx, k); err != nil {
					Logger.Errorf("(%s) - error deleting key: %v", c.name, err)
				}
			})
		})

		b.SetParallelism(benchNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				if err := c.op(ctx, p, getKey(counter)); err != nil {
					Logger.Errorf("(%s) - error: %v", c.name, err)
				}
				counter++
			}
		})
	})
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range benchSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// creates an array of test keys and functions to work with them
func getKeys(prefix string) (func(int) string, func(func(string))) {
	keys := make([]string, benchKeySpread)
	for i := 0; i < benchKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s/%s-%d", benchKeyPrefix, prefix, i)
	}

	// Function to get a key by index (with wraparound)
	getKey := func(i int) string {
		return keys[i%benchKeySpread]
	}

	// Function to iterate over all keys and apply a function to each
	iterateKeys := func(fn func(string)) {
		for _, key := range keys {
			fn(key)
		}
	}

	return getKey, iterateKeys
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	// Print the formatted result
	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\n", test, nsPerOp, time.Duration(nsPerOp), opsPerSec)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult, config common.Config) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "Skipped",
		"Serializer", "Encryption", "Executor", "Workers", "CacheSize", "SyncWrites",
		"Threads", "LargeValueSizeKB", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	tests := make([]string, 0, len(results))
	for test := range results {
		tests = append(tests, test)
	}
	sort.Strings(tests)

	// Write test results
	for _, test := range tests {
		result := results[test]
		var nsPerOp float64
		var opsPerSec float64
		var skipped string

		if result.NsPerOp() == 0 {
			skipped = "true"
		} else {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			skipped,
			config.Serializer,
			config.Encryption,
			config.Executor,
			strconv.Itoa(config.Workers),
			strconv.Itoa(config.CacheSize),
			strconv.FormatBool(config.SyncWrites),
			strconv.Itoa(benchNumThreads),
			strconv.Itoa(benchLargeValueSizeKB),
			strconv.Itoa(benchKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
