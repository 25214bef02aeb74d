package frozentxo

type FreezeResult int

const (
	FreezeOK FreezeResult = iota
	// FreezeOKAlreadyFrozen means the stored record already matched the request.
	FreezeOKAlreadyFrozen
	// FreezeErrorAlreadyInConsensusBlacklist means a PolicyOnly freeze was refused because the TXO
	// is Consensus or Confiscation frozen.
	FreezeErrorAlreadyInConsensusBlacklist
	// FreezeOKUpdatedToConsensusBlacklist means a PolicyOnly record was upgraded to Consensus.
	FreezeOKUpdatedToConsensusBlacklist
	// FreezeOKUpdated means the intervals or expiry flag of an existing record were overwritten.
	FreezeOKUpdated
)

func (r FreezeResult) String() string {
	switch r {
	case FreezeOK:
		return "OK"
	case FreezeOKAlreadyFrozen:
		return "OK_ALREADY_FROZEN"
	case FreezeErrorAlreadyInConsensusBlacklist:
		return "ERROR_ALREADY_IN_CONSENSUS_BLACKLIST"
	case FreezeOKUpdatedToConsensusBlacklist:
		return "OK_UPDATED_TO_CONSENSUS_BLACKLIST"
	case FreezeOKUpdated:
		return "OK_UPDATED"
	default:
		return "UNKNOWN"
	}
}

type UnfreezeResult int

const (
	UnfreezeOK UnfreezeResult = iota
	UnfreezeErrorTXONotFrozen
	UnfreezeErrorTXOIsInConsensusBlacklist
)

func (r UnfreezeResult) String() string {
	switch r {
	case UnfreezeOK:
		return "OK"
	case UnfreezeErrorTXONotFrozen:
		return "ERROR_TXO_NOT_FROZEN"
	case UnfreezeErrorTXOIsInConsensusBlacklist:
		return "ERROR_TXO_IS_IN_CONSENSUS_BLACKLIST"
	default:
		return "UNKNOWN"
	}
}

type WhitelistResult int

const (
	WhitelistOK WhitelistResult = iota
	// WhitelistOKAlreadyWhitelistedAtLowerHeight means the transaction is already whitelisted at
	// the same or a lower height. Nothing was changed.
	WhitelistOKAlreadyWhitelistedAtLowerHeight
	// WhitelistOKUpdated means the enforce height of an already whitelisted transaction was lowered.
	WhitelistOKUpdated
	WhitelistErrorTXONotConsensusFrozen
	WhitelistErrorNotValid
)

func (r WhitelistResult) String() string {
	switch r {
	case WhitelistOK:
		return "OK"
	case WhitelistOKAlreadyWhitelistedAtLowerHeight:
		return "OK_ALREADY_WHITELISTED_AT_LOWER_HEIGHT"
	case WhitelistOKUpdated:
		return "OK_UPDATED"
	case WhitelistErrorTXONotConsensusFrozen:
		return "ERROR_TXO_NOT_CONSENSUS_FROZEN"
	case WhitelistErrorNotValid:
		return "ERROR_NOT_VALID"
	default:
		return "UNKNOWN"
	}
}

type CleanExpiredRecordsResult struct {
	NumConsensusRemoved             int
	NumConsensusUpdatedToPolicyOnly int
}

type UnfreezeAllResult struct {
	NumUnfrozenPolicyOnly int
	NumUnfrozenConsensus  int
	NumUnwhitelistedTxs   int
}

type ClearWhitelistResult struct {
	NumUnwhitelistedTxs      int
	NumFrozenBackToConsensus int
}
