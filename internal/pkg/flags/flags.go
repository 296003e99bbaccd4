package flags

import "github.com/urfave/cli/v2"

// CLI flags for shredcompare
var (
	FirstFeed = &cli.StringFlag{
		Name:  "first-feed",
		Usage: "type of the first stream to compare, can be: 'node', 'gateway'",
		Value: "gateway",
	}
	SecondFeed = &cli.StringFlag{
		Name:  "second-feed",
		Usage: "type of the second stream to compare, can be: 'node', 'gateway'",
		Value: "node",
	}
	FirstFeedURI = &cli.StringFlag{
		Name:  "first-feed-uri",
		Usage: "websocket uri of the first stream, falls back to SHREDCMP_FIRST_URI",
	}
	SecondFeedURI = &cli.StringFlag{
		Name:  "second-feed-uri",
		Usage: "websocket uri of the second stream, falls back to SHREDCMP_SECOND_URI",
	}
	FirstAuthHeader = &cli.StringFlag{
		Name:  "first-auth-header",
		Usage: "authorization header for the first stream, falls back to SHREDCMP_FIRST_AUTH",
	}
	SecondAuthHeader = &cli.StringFlag{
		Name:  "second-auth-header",
		Usage: "authorization header for the second stream, falls back to SHREDCMP_SECOND_AUTH",
	}
	GatewayFeedName = &cli.StringFlag{
		Name:  "gateway-feed-name",
		Usage: "feed name used when subscribing to a gateway stream",
		Value: "newTxs",
	}
	Accounts = &cli.StringFlag{
		Name:  "accounts",
		Usage: "comma separated list of required account addresses to filter transactions by",
	}
	Interval = &cli.IntFlag{
		Name:  "interval",
		Usage: "benchmark duration in seconds",
		Value: 60,
	}
	Dump = &cli.StringFlag{
		Name:  "dump",
		Usage: "dump per-signature receive times to a csv file, possible value: 'ALL'",
	}
	Verbose = &cli.BoolFlag{
		Name:  "verbose",
		Usage: "enable debug logging",
		Value: false,
	}
	LogToFile = &cli.BoolFlag{
		Name:  "log-to-file",
		Usage: "write logs to a timestamped file under ./logs instead of stderr",
		Value: false,
	}
)
