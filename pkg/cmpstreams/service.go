package cmpstreams

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/romkoth/shredlink-benchmarking/internal/pkg/config"
	"github.com/romkoth/shredlink-benchmarking/internal/pkg/flags"
	"github.com/romkoth/shredlink-benchmarking/internal/pkg/logger"
	"github.com/romkoth/shredlink-benchmarking/pkg/cmpstreams/feeds"
)

// CompareTxStreamsService wires flags and environment config into a
// Runner and prints the resulting report.
type CompareTxStreamsService struct{}

func NewCompareTxStreamsService() *CompareTxStreamsService {
	return &CompareTxStreamsService{}
}

// Run is the entry point of the transactions command.
func (s *CompareTxStreamsService) Run(c *cli.Context) error {
	if err := logger.Init(c.Bool(flags.Verbose.Name), c.Bool(flags.LogToFile.Name)); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cannot load environment configuration: %v", err)
	}

	var accounts []string
	if raw := c.String(flags.Accounts.Name); raw != "" {
		accounts = strings.Split(raw, ",")
	}

	first, err := newStream(
		c.String(flags.FirstFeed.Name),
		config.Fallback(c.String(flags.FirstFeedURI.Name), cfg.FirstURI),
		config.Fallback(c.String(flags.FirstAuthHeader.Name), cfg.FirstAuth),
		c.String(flags.GatewayFeedName.Name),
		accounts,
	)
	if err != nil {
		return fmt.Errorf("first feed: %v", err)
	}

	second, err := newStream(
		c.String(flags.SecondFeed.Name),
		config.Fallback(c.String(flags.SecondFeedURI.Name), cfg.SecondURI),
		config.Fallback(c.String(flags.SecondAuthHeader.Name), cfg.SecondAuth),
		c.String(flags.GatewayFeedName.Name),
		accounts,
	)
	if err != nil {
		return fmt.Errorf("second feed: %v", err)
	}

	runner := NewRunner(first, second)
	runner.RunID = uuid.NewString()

	if d := strings.ToUpper(c.String(flags.Dump.Name)); d != "" {
		if d != "ALL" {
			return fmt.Errorf("error: possible value for --%s is %q", flags.Dump.Name, "ALL")
		}

		fileName := fmt.Sprintf("all_signatures-%s.csv", runner.RunID)
		file, err := os.Create(fileName)
		if err != nil {
			return fmt.Errorf("cannot open file %q: %v", fileName, err)
		}

		writer := csv.NewWriter(file)

		defer func() {
			writer.Flush()
			if err := file.Sync(); err != nil {
				log.Errorf("cannot sync contents of file %q: %v", fileName, err)
			}
			if err := file.Close(); err != nil {
				log.Errorf("cannot close file %q: %v", fileName, err)
			}
		}()

		if err := writer.Write([]string{"Signature", "First Feed Time", "Second Feed Time", "Time Diff"}); err != nil {
			return fmt.Errorf("cannot write CSV header of file %q: %v", fileName, err)
		}

		runner.DumpWriter = writer
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	duration := time.Duration(c.Int(flags.Interval.Name)) * time.Second

	report, err := runner.Run(ctx, duration)
	if err != nil {
		return err
	}

	fmt.Print(report.Format())

	return nil
}

func newStream(kind, uri, authHeader, feedName string, accounts []string) (TransactionStream, error) {
	if uri == "" {
		return nil, fmt.Errorf("no uri provided via flag or %s environment variable", config.EnvPrefix)
	}

	switch strings.ToLower(kind) {
	case "node":
		return feeds.NewNodeWS(uri, authHeader, accounts), nil
	case "gateway":
		return feeds.NewGatewayWS(uri, authHeader, feedName, accounts), nil
	default:
		return nil, fmt.Errorf("unknown feed type %q, possible values: 'node', 'gateway'", kind)
	}
}
