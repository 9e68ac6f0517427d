// Command importprices reads a tab-delimited price file (CODE<TAB>PRICE per
// line), deduplicates it, and submits it to the update endpoint in batches.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gestion-service/internal/pricing"
)

func main() {
	var (
		file            = flag.String("file", "", "path to the tab-delimited price file (required)")
		url             = flag.String("url", "http://localhost:8080/api/update-prices", "price update endpoint")
		batchSize       = flag.Int("batch", pricing.DefaultBatchSize, "entries per batch")
		concurrency     = flag.Int("concurrency", pricing.DefaultConcurrency, "concurrent requests per group")
		continueOnError = flag.Bool("continue-on-error", false, "keep dispatching after a batch fails")
		timeout         = flag.Duration("timeout", pricing.DefaultRequestTimeout, "per-request timeout")
		verbose         = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: importprices -file <prices.txt> [-url <endpoint>]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	entryLogger := logrus.NewEntry(logger)

	raw, err := os.ReadFile(*file)
	if err != nil {
		logger.WithError(err).Fatal("Failed to read price file")
	}

	entries, parseErrors := pricing.ParseEntries(string(raw))
	for _, msg := range parseErrors {
		logger.Warn(msg)
	}
	if len(entries) == 0 {
		logger.Fatal("No valid entries in price file")
	}
	logger.WithFields(logrus.Fields{
		"entries":   len(entries),
		"malformed": len(parseErrors),
	}).Info("Price file parsed")

	dispatcher := pricing.NewDispatcher(*url, entryLogger)
	dispatcher.BatchSize = *batchSize
	dispatcher.Concurrency = *concurrency
	dispatcher.ContinueOnError = *continueOnError
	dispatcher.RequestTimeout = *timeout
	dispatcher.OnProgress = func(processed, total int) {
		fmt.Printf("\rUpdated %d of %d entries", processed, total)
	}

	start := time.Now()
	result, err := dispatcher.Dispatch(context.Background(), entries)
	fmt.Println()
	if err != nil {
		logger.WithError(err).WithField("updated", result.Updated).Fatal("Import aborted")
	}

	for _, msg := range result.Errors {
		logger.Warn(msg)
	}
	logger.WithFields(logrus.Fields{
		"updated": result.Updated,
		"errors":  len(result.Errors),
		"took":    time.Since(start).Round(time.Millisecond).String(),
	}).Info("Import finished")
}
