// Package main is frozentxocli, the operator command line for the frozen TXO registry. It opens
// the registry named by the frozentxo_store setting, applies one command and closes it again.
//
// Usage:
//
//	frozentxocli policy-add --txout <txid>:<vout> [--txout ...]
//	frozentxocli consensus-add --txout <txid>:<vout> --range 100-200 --range 300-
//	frozentxocli query
//	frozentxocli whitelist-add --height 150 --hex <tx hex>
//	frozentxocli clear --height 800000
//	frozentxocli check-tx --height 150 --hex <tx hex>
package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/bsv-blockchain/frozentxo/errors"
	"github.com/bsv-blockchain/frozentxo/services/blacklist"
	"github.com/bsv-blockchain/frozentxo/settings"
	"github.com/bsv-blockchain/frozentxo/stores/frozentxo"
	"github.com/bsv-blockchain/frozentxo/ulogger"
	"github.com/urfave/cli/v2"
)

var (
	logger    ulogger.Logger
	tSettings *settings.Settings
	registry  *frozentxo.Registry
	service   *blacklist.Service
)

func main() {
	txOutFlag := &cli.StringSliceFlag{
		Name:     "txout",
		Usage:    "frozen output as <txid>:<vout>, may be repeated",
		Required: true,
	}

	app := &cli.App{
		Name:  "frozentxocli",
		Usage: "Manage the frozen TXO registry",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "store",
				Usage: "store URL, overrides the frozentxo_store setting",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "DEBUG, INFO, WARN or ERROR",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "policy-add",
				Usage:  "Freeze outputs on the policy blacklist",
				Flags:  []cli.Flag{txOutFlag},
				Action: withRegistry(addToPolicyBlacklist),
			},
			{
				Name:  "consensus-add",
				Usage: "Freeze outputs on the consensus blacklist",
				Flags: []cli.Flag{
					txOutFlag,
					&cli.StringSliceFlag{
						Name:  "range",
						Usage: "enforced height range <start>-<stop> or <start>- for no end, may be repeated",
					},
					&cli.BoolFlag{
						Name:  "policy-expires",
						Usage: "remove the outputs instead of keeping them policy frozen once the ranges expire",
					},
				},
				Action: withRegistry(addToConsensusBlacklist),
			},
			{
				Name:   "policy-remove",
				Usage:  "Unfreeze policy frozen outputs",
				Flags:  []cli.Flag{txOutFlag},
				Action: withRegistry(removeFromPolicyBlacklist),
			},
			{
				Name:   "query",
				Usage:  "List every frozen output",
				Action: withRegistry(queryBlacklist),
			},
			{
				Name:  "whitelist-add",
				Usage: "Whitelist a confiscation transaction",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "hex", Usage: "transaction hex, may be repeated", Required: true},
					&cli.IntFlag{Name: "height", Usage: "height from which the transaction is accepted", Required: true},
				},
				Action: withRegistry(addToConfiscationWhitelist),
			},
			{
				Name:  "whitelist-query",
				Usage: "List whitelisted confiscation transactions",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "verbose", Usage: "include the confiscated outputs"},
				},
				Action: withRegistry(queryConfiscationWhitelist),
			},
			{
				Name:   "whitelist-clear",
				Usage:  "Remove every whitelisted transaction",
				Action: withRegistry(clearConfiscationWhitelist),
			},
			{
				Name:  "clear",
				Usage: "Remove expired consensus records, or everything with --all",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Usage: "remove every frozen output and whitelisted transaction"},
					&cli.IntFlag{Name: "height", Usage: "current chain tip height"},
					&cli.IntFlag{Name: "delta", Value: -1, Usage: "expiration height delta, defaults to frozentxo_expirationHeightDelta"},
				},
				Action: withRegistry(clearBlacklists),
			},
			{
				Name:  "check-tx",
				Usage: "Check whether a transaction spends frozen outputs",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "hex", Usage: "transaction hex", Required: true},
					&cli.IntFlag{Name: "height", Usage: "height the transaction would be mined at", Required: true},
					&cli.StringFlag{Name: "block", Usage: "check as part of the block with this hash"},
					&cli.StringFlag{Name: "source", Value: "frozentxocli", Usage: "source recorded in the audit log"},
				},
				Action: withRegistry(checkTx),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s error: %v\n", errors.GetErrorCategory(err), err)
		os.Exit(exitCode(err))
	}
}

// exitCode lets scripts tell a frozen spend apart from an unavailable store.
func exitCode(err error) int {
	switch errors.GetErrorCategory(err) {
	case "none":
		return 0
	case "frozen":
		return 2
	case "storage":
		return 3
	case "context":
		return 4
	default:
		return 1
	}
}

func setup(c *cli.Context) error {
	tSettings = settings.NewSettings()

	if store := c.String("store"); store != "" {
		storeURL, err := url.Parse(store)
		if err != nil {
			return errors.NewConfigurationError("invalid store URL %q", store, err)
		}

		tSettings.FrozenTXO.StoreURL = storeURL
	}

	logLevel := tSettings.LogLevel
	if level := c.String("log-level"); level != "" {
		logLevel = level
	}

	logger = ulogger.New("frozentxocli", ulogger.WithLevel(logLevel), ulogger.WithPretty(tSettings.PrettyLogs), ulogger.WithWriter(os.Stderr))

	return nil
}

// withRegistry opens the registry for the duration of action.
func withRegistry(action cli.ActionFunc) cli.ActionFunc {
	return func(c *cli.Context) (err error) {
		if registry, err = frozentxo.Init(logger, tSettings); err != nil {
			return err
		}

		defer func() {
			if shutdownErr := frozentxo.Shutdown(); shutdownErr != nil && err == nil {
				err = shutdownErr
			}
		}()

		service = blacklist.New(logger, registry, tSettings)

		return action(c)
	}
}
