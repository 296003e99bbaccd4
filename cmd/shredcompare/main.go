package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/romkoth/shredlink-benchmarking/internal/pkg/flags"
	"github.com/romkoth/shredlink-benchmarking/pkg/cmpstreams"
)

func main() {
	app := &cli.App{
		Name:  "shredcompare",
		Usage: "compares delivery latency of two live Solana transaction streams",
		Commands: []*cli.Command{
			{
				Name:  "transactions",
				Usage: "compares stream of txs between two websocket endpoints",
				Flags: []cli.Flag{
					flags.FirstFeed,
					flags.SecondFeed,
					flags.FirstFeedURI,
					flags.SecondFeedURI,
					flags.FirstAuthHeader,
					flags.SecondAuthHeader,
					flags.GatewayFeedName,
					flags.Accounts,
					flags.Interval,
					flags.Dump,
					flags.Verbose,
					flags.LogToFile,
				},
				Action: cmpstreams.NewCompareTxStreamsService().Run,
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
