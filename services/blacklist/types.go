package blacklist

// TxOut identifies a transaction output by hex txid and output index.
type TxOut struct {
	TxID string `json:"txId"`
	Vout int    `json:"vout"`
}

// HeightRange is a half-open block height range [Start, Stop). A nil Stop never ends.
type HeightRange struct {
	Start int  `json:"start"`
	Stop  *int `json:"stop,omitempty"`
}

type Fund struct {
	TxOut                      TxOut         `json:"txOut"`
	EnforceAtHeight            []HeightRange `json:"enforceAtHeight,omitempty"`
	PolicyExpiresWithConsensus bool          `json:"policyExpiresWithConsensus,omitempty"`
}

type ConfiscationTransaction struct {
	EnforceAtHeight int    `json:"enforceAtHeight"`
	Hex             string `json:"hex"`
}

// NotProcessed names an item of a batch request that was not applied, and why.
type NotProcessed struct {
	Item   string `json:"item"`
	Reason string `json:"reason"`
}

type Response struct {
	NotProcessed []NotProcessed `json:"notProcessed"`
}

type BlacklistEntry struct {
	TxOut                      TxOut         `json:"txOut"`
	Blacklist                  string        `json:"blacklist"`
	EnforceAtHeight            []HeightRange `json:"enforceAtHeight,omitempty"`
	PolicyExpiresWithConsensus bool          `json:"policyExpiresWithConsensus,omitempty"`
}

type WhitelistEntry struct {
	TxID            string  `json:"txId"`
	EnforceAtHeight int     `json:"enforceAtHeight"`
	ConfiscatedTXOs []TxOut `json:"confiscatedTxOuts,omitempty"`
}

type ClearBlacklistsRequest struct {
	// RemoveAllEntries removes every frozen TXO and whitelisted transaction instead of only expired records.
	RemoveAllEntries bool
	// ExpirationHeightDelta is subtracted from CurrentHeight before expired records are removed.
	// When nil the configured delta is used.
	ExpirationHeightDelta *int
	CurrentHeight         int
}

type ClearBlacklistsResult struct {
	NumRemovedPolicyOnly            int `json:"numRemovedPolicyOnly"`
	NumRemovedConsensus             int `json:"numRemovedConsensus"`
	NumConsensusUpdatedToPolicyOnly int `json:"numConsensusUpdatedToPolicyOnly"`
	NumUnwhitelistedTxs             int `json:"numUnwhitelistedTxs"`
}

type ClearWhitelistResult struct {
	NumUnwhitelistedTxs      int `json:"numUnwhitelistedTxs"`
	NumFrozenBackToConsensus int `json:"numFrozenBackToConsensus"`
}
