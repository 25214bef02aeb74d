package main

import (
	"strconv"
	"strings"

	"github.com/bsv-blockchain/frozentxo/errors"
	"github.com/bsv-blockchain/frozentxo/services/blacklist"
)

// parseTxOuts parses outputs given as <txid>:<vout>.
func parseTxOuts(values []string) ([]blacklist.TxOut, error) {
	txOuts := make([]blacklist.TxOut, 0, len(values))

	for _, value := range values {
		txid, voutStr, found := strings.Cut(value, ":")
		if !found || txid == "" {
			return nil, errors.NewInvalidArgumentError("expected <txid>:<vout>, got %q", value)
		}

		vout, err := strconv.Atoi(voutStr)
		if err != nil {
			return nil, errors.NewInvalidArgumentError("invalid vout in %q", value, err)
		}

		txOuts = append(txOuts, blacklist.TxOut{TxID: txid, Vout: vout})
	}

	return txOuts, nil
}

// parseHeightRanges parses ranges given as <start>-<stop>, or <start>- for a range without end.
func parseHeightRanges(values []string) ([]blacklist.HeightRange, error) {
	ranges := make([]blacklist.HeightRange, 0, len(values))

	for _, value := range values {
		startStr, stopStr, found := strings.Cut(value, "-")
		if !found {
			return nil, errors.NewInvalidArgumentError("expected <start>-<stop>, got %q", value)
		}

		start, err := strconv.Atoi(startStr)
		if err != nil {
			return nil, errors.NewInvalidArgumentError("invalid start in %q", value, err)
		}

		r := blacklist.HeightRange{Start: start}

		if stopStr != "" {
			stop, err := strconv.Atoi(stopStr)
			if err != nil {
				return nil, errors.NewInvalidArgumentError("invalid stop in %q", value, err)
			}

			r.Stop = &stop
		}

		ranges = append(ranges, r)
	}

	return ranges, nil
}
