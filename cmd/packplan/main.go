package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/pack-planner/internal/lineproto"
	"github.com/eugenenazirov/pack-planner/internal/logging"
	"github.com/eugenenazirov/pack-planner/internal/planner"
)

func main() {
	kingpinApp := kingpin.New("packplan", "Pack Planner - reads item batches from stdin and writes the planned packs to stdout")
	inputFile := kingpinApp.Flag("input", "Read batches from a file instead of stdin").String()
	debugFlag := kingpinApp.Flag("debug", "Enable debug logging").Bool()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	logger, err := logging.New(*debugFlag)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	in := io.Reader(os.Stdin)
	if *inputFile != "" {
		f, err := os.Open(*inputFile)
		if err != nil {
			logger.Fatal("failed to open input file", zap.Error(err))
		}
		defer func() {
			_ = f.Close()
		}()
		in = f
	}

	if err := run(in, os.Stdout, logger); err != nil {
		logger.Fatal("planning failed", zap.Error(err))
	}
}

// run plans every blank-line separated batch on the input and writes the
// formatted packs for each, separated by a blank line.
func run(r io.Reader, w io.Writer, logger *zap.Logger) error {
	reader := lineproto.NewReader(r)
	first := true

	for {
		batch, err := reader.NextBatch()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("parse batch: %w", err)
		}

		packs, err := planner.Plan(batch.Items, batch.Order, batch.Limits)
		if err != nil {
			return fmt.Errorf("plan batch: %w", err)
		}

		if !first {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := lineproto.WriteBatch(w, packs); err != nil {
			return fmt.Errorf("write packs: %w", err)
		}

		logger.Debug("planned batch",
			zap.Int("items", len(batch.Items)),
			zap.Int("packs", len(packs)),
			zap.Stringer("sort_order", batch.Order),
		)
		first = false
	}
}
