package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/bsv-blockchain/frozentxo/errors"
	"github.com/bsv-blockchain/frozentxo/services/blacklist"
	"github.com/bsv-blockchain/frozentxo/services/validator/frozencheck"
	"github.com/bsv-blockchain/frozentxo/services/validator/frozencheck/auditlog"
	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	safeconversion "github.com/bsv-blockchain/go-safe-conversion"
	"github.com/urfave/cli/v2"
)

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func funds(c *cli.Context) ([]blacklist.Fund, error) {
	txOuts, err := parseTxOuts(c.StringSlice("txout"))
	if err != nil {
		return nil, err
	}

	ranges, err := parseHeightRanges(c.StringSlice("range"))
	if err != nil {
		return nil, err
	}

	result := make([]blacklist.Fund, 0, len(txOuts))

	for _, txOut := range txOuts {
		result = append(result, blacklist.Fund{
			TxOut:                      txOut,
			EnforceAtHeight:            ranges,
			PolicyExpiresWithConsensus: c.Bool("policy-expires"),
		})
	}

	return result, nil
}

func addToPolicyBlacklist(c *cli.Context) error {
	f, err := funds(c)
	if err != nil {
		return err
	}

	resp, err := service.AddToPolicyBlacklist(c.Context, f)
	if err != nil {
		return err
	}

	return printJSON(resp)
}

func addToConsensusBlacklist(c *cli.Context) error {
	f, err := funds(c)
	if err != nil {
		return err
	}

	resp, err := service.AddToConsensusBlacklist(c.Context, f)
	if err != nil {
		return err
	}

	return printJSON(resp)
}

func removeFromPolicyBlacklist(c *cli.Context) error {
	f, err := funds(c)
	if err != nil {
		return err
	}

	resp, err := service.RemoveFromPolicyBlacklist(c.Context, f)
	if err != nil {
		return err
	}

	return printJSON(resp)
}

func queryBlacklist(c *cli.Context) error {
	entries, err := service.QueryBlacklist(c.Context)
	if err != nil {
		return err
	}

	return printJSON(entries)
}

func addToConfiscationWhitelist(c *cli.Context) error {
	txs := make([]blacklist.ConfiscationTransaction, 0)

	for _, hex := range c.StringSlice("hex") {
		txs = append(txs, blacklist.ConfiscationTransaction{
			EnforceAtHeight: c.Int("height"),
			Hex:             hex,
		})
	}

	resp, err := service.AddToConfiscationTxIDWhitelist(c.Context, txs)
	if err != nil {
		return err
	}

	return printJSON(resp)
}

func queryConfiscationWhitelist(c *cli.Context) error {
	entries, err := service.QueryConfiscationTxIDWhitelist(c.Context, c.Bool("verbose"))
	if err != nil {
		return err
	}

	return printJSON(entries)
}

func clearConfiscationWhitelist(c *cli.Context) error {
	result, err := service.ClearConfiscationWhitelist(c.Context)
	if err != nil {
		return err
	}

	return printJSON(result)
}

func clearBlacklists(c *cli.Context) error {
	req := blacklist.ClearBlacklistsRequest{
		RemoveAllEntries: c.Bool("all"),
		CurrentHeight:    c.Int("height"),
	}

	if !req.RemoveAllEntries && !c.IsSet("height") {
		return errors.NewInvalidArgumentError("--height is required unless --all is set")
	}

	if delta := c.Int("delta"); delta >= 0 {
		req.ExpirationHeightDelta = &delta
	}

	result, err := service.ClearBlacklists(c.Context, req)
	if err != nil {
		return err
	}

	return printJSON(result)
}

func checkTx(c *cli.Context) error {
	tx, err := bt.NewTxFromString(c.String("hex"))
	if err != nil {
		return errors.NewInvalidArgumentError("invalid transaction hex", err)
	}

	height, err := safeconversion.IntToInt32(c.Int("height"))
	if err != nil {
		return errors.NewInvalidArgumentError("invalid height %d", c.Int("height"), err)
	}

	auditLogger, err := auditlog.NewFromSettings(tSettings)
	if err != nil {
		return err
	}

	defer func() {
		_ = auditLogger.Close()
	}()

	// the CLI has no chain state, the previous active block is left zero
	var prevHash chainhash.Hash

	var check *frozencheck.Check

	if block := c.String("block"); block != "" {
		blockHash, err := chainhash.NewHashFromStr(block)
		if err != nil {
			return errors.NewInvalidArgumentError("invalid block hash %q", block, err)
		}

		check = frozencheck.NewBlockCheck(registry, height, c.String("source"), prevHash, time.Now(), auditLogger, *blockHash)
	} else {
		check = frozencheck.NewTxCheck(registry, height, c.String("source"), prevHash, time.Now(), auditLogger)
	}

	if err = check.CheckTransactionInputs(tx); err != nil {
		return err
	}

	fmt.Printf("%s does not spend frozen outputs at height %d\n", tx.TxID(), height)

	return nil
}
