package errors

import "strconv"

// ERR is the error code carried by every *Error.
//
//nolint:revive,stylecheck // codes keep the upper snake case names used on the wire
type ERR int32

const (
	ERR_UNKNOWN                ERR = 0
	ERR_INVALID_ARGUMENT       ERR = 1
	ERR_PROCESSING             ERR = 4
	ERR_CONFIGURATION          ERR = 5
	ERR_CONTEXT_CANCELED       ERR = 7
	ERR_SERVICE_NOT_STARTED    ERR = 42
	ERR_SERVICE_ERROR          ERR = 43
	ERR_STORAGE_UNAVAILABLE    ERR = 61
	ERR_STORAGE_NOT_STARTED    ERR = 62
	ERR_STORAGE_ERROR          ERR = 69
	ERR_TX_INPUTS_FROZEN       ERR = 75
	ERR_BLOCK_TX_INPUTS_FROZEN ERR = 76
)

var ERR_name = map[int32]string{
	0:  "UNKNOWN",
	1:  "INVALID_ARGUMENT",
	4:  "PROCESSING",
	5:  "CONFIGURATION",
	7:  "CONTEXT_CANCELED",
	42: "SERVICE_NOT_STARTED",
	43: "SERVICE_ERROR",
	61: "STORAGE_UNAVAILABLE",
	62: "STORAGE_NOT_STARTED",
	69: "STORAGE_ERROR",
	75: "TX_INPUTS_FROZEN",
	76: "BLOCK_TX_INPUTS_FROZEN",
}

// Enum returns the symbolic name of the code, or the numeric value for unknown codes.
func (x ERR) Enum() string {
	if name, ok := ERR_name[int32(x)]; ok {
		return name
	}

	return "ERR(" + strconv.Itoa(int(x)) + ")"
}

func (x ERR) String() string {
	return x.Enum()
}
