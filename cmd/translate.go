/*
Copyright © 2025 Yago Veloso

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yagoveloso/po-translator-llm/internal/engine"
	"github.com/yagoveloso/po-translator-llm/internal/pofile"
	"github.com/yagoveloso/po-translator-llm/internal/ratelimit"
	"github.com/yagoveloso/po-translator-llm/internal/store"
	"github.com/yagoveloso/po-translator-llm/internal/translator"
)

var (
	inputFile  string
	outputFile string
	sourceLang string
	targetLang string

	providerName string
	model        string
	baseURL      string
	credentials  string
	timeout      time.Duration

	batchSize  int
	maxRetries int
	baseDelay  time.Duration

	rpm         int
	rps         int
	concurrency int
	noAdaptive  bool

	dbPath  string
	noCache bool
	verbose bool
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate pending entries of a PO catalog",
	Long: `Translate every pending entry of a PO catalog (empty translation, or
translation equal to its source) through the configured provider.

The rate limiter paces requests against per-provider defaults
(overridable with --rpm/--rps/--concurrency) and, unless --no-adaptive
is set, backs off automatically when the provider throttles. The output
file is rewritten after every translated entry, so an interrupted run
loses nothing.

Secrets may come from the environment: POTRANS_API_KEY,
POTRANS_CREDENTIALS, POTRANS_MYMEMORY_EMAIL.

Examples:
  potrans translate -i uk.po -t uk --provider google -c sa.json
  potrans translate -i de.po -o de.out.po -t de --provider openrouter --model mistralai/mistral-nemo`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if outputFile == "" {
			outputFile = inputFile
		}

		catalog, err := pofile.ParseFile(inputFile)
		if err != nil {
			return fmt.Errorf("failed to read input catalog: %w", err)
		}

		cfg := translator.Config{
			APIKey:      viper.GetString("api_key"),
			Model:       model,
			BaseURL:     baseURL,
			Credentials: viper.GetString("credentials"),
			Email:       viper.GetString("mymemory_email"),
			Timeout:     timeout,
		}

		provider, err := buildProvider(providerName, sourceLang, cfg)
		if err != nil {
			return err
		}

		limiter := ratelimit.New(ratelimit.Config{
			Provider: provider.Name(),
			Limits: ratelimit.Limits{
				PerMinute:     rpm,
				PerSecond:     rps,
				MaxConcurrent: concurrency,
			},
			BaseDelay: baseDelay,
			Adaptive:  !noAdaptive,
		})

		var memory *store.Store
		if !noCache && dbPath != "" {
			memory, err = store.New(dbPath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer memory.Close()
		}

		total, translated, pending := catalog.Stats()
		fmt.Fprintf(os.Stderr, "Catalog: %d entries, %d translated, %d pending\n", total, translated, pending)
		if pending == 0 {
			fmt.Println("Nothing to translate.")
			return nil
		}

		bar := progressbar.NewOptions(pending,
			progressbar.OptionSetDescription("translating"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)

		eng := engine.New(provider, limiter, memory, engine.Config{
			TargetLang: targetLang,
			OutputPath: outputFile,
			BatchSize:  batchSize,
			MaxRetries: maxRetries,
			OnProgress: func(done, total int) {
				_ = bar.Set(done)
			},
			OnLog: func(format string, args ...any) {
				if verbose {
					fmt.Fprintf(os.Stderr, format+"\n", args...)
				}
			},
		})

		summary, err := eng.Run(context.Background(), catalog)
		_ = bar.Finish()
		if err != nil {
			return fmt.Errorf("run failed: %w", err)
		}

		stats := limiter.Stats()
		fmt.Printf("Translated %d/%d entries to %s\n", summary.Settled, summary.Selected, targetLang)
		if summary.CacheHits > 0 {
			fmt.Printf("  from translation memory: %d\n", summary.CacheHits)
		}
		if summary.Failed > 0 {
			fmt.Printf("  failed (kept source text): %d\n", summary.Failed)
		}
		if summary.ThrottleHits > 0 {
			fmt.Printf("  throttle hits: %d (final delay %s, concurrency %d)\n",
				summary.ThrottleHits, stats.Delay, stats.MaxConcurrent)
		}
		if summary.AvgDelay > 0 {
			fmt.Printf("  average retry wait: %s\n", summary.AvgDelay)
		}
		fmt.Printf("Output written to %s\n", outputFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input PO catalog (required)")
	translateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output path (default: translate in place)")
	translateCmd.Flags().StringVarP(&sourceLang, "source", "s", "en", "Source language code (MyMemory only)")
	translateCmd.Flags().StringVarP(&targetLang, "target", "t", "", "Target language code (required)")

	translateCmd.Flags().StringVar(&providerName, "provider", "google", "Translation provider (google, openai, openrouter, groq, ollama, mymemory)")
	translateCmd.Flags().StringVarP(&model, "model", "m", "", "Model identifier for LLM providers")
	translateCmd.Flags().StringVar(&baseURL, "base-url", "", "Override the provider endpoint")
	translateCmd.Flags().String("api-key", "", "API key for HTTP providers")
	translateCmd.Flags().StringVarP(&credentials, "credentials", "c", "", "Path to Google Cloud credentials")
	translateCmd.Flags().String("mymemory-email", "", "MyMemory email (raises the free quota)")
	translateCmd.Flags().DurationVar(&timeout, "timeout", 0, "Per-request timeout (0 = provider default)")

	translateCmd.Flags().IntVar(&batchSize, "batch-size", 10, "Entries per progress batch")
	translateCmd.Flags().IntVar(&maxRetries, "max-retries", 3, "Attempt budget per entry, shared across error classes")
	translateCmd.Flags().DurationVar(&baseDelay, "base-delay", 0, "Base pacing delay before each request")

	translateCmd.Flags().IntVar(&rpm, "rpm", 0, "Requests per minute (0 = provider default)")
	translateCmd.Flags().IntVar(&rps, "rps", 0, "Requests per second (0 = provider default)")
	translateCmd.Flags().IntVar(&concurrency, "concurrency", 0, "Max concurrent requests (0 = provider default)")
	translateCmd.Flags().BoolVar(&noAdaptive, "no-adaptive", false, "Disable adaptive backoff on throttling")

	translateCmd.Flags().StringVar(&dbPath, "db", "./data/potrans.db", "Database path for the translation memory")
	translateCmd.Flags().BoolVar(&noCache, "no-cache", false, "Disable the translation memory")
	translateCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log per-entry retries and warnings")

	translateCmd.MarkFlagRequired("input")
	translateCmd.MarkFlagRequired("target")

	viper.SetEnvPrefix("POTRANS")
	viper.AutomaticEnv()
	viper.BindPFlag("api_key", translateCmd.Flags().Lookup("api-key"))
	viper.BindPFlag("credentials", translateCmd.Flags().Lookup("credentials"))
	viper.BindPFlag("mymemory_email", translateCmd.Flags().Lookup("mymemory-email"))
}
