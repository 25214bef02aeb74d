package frozentxo

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/bsv-blockchain/frozentxo/errors"
	"github.com/bsv-blockchain/go-wire"
)

const (
	blacklistMask          = 0x7f
	policyExpiresFlag      = 0x80
	heightIntervalSize     = 8
	maxDecodeCountPerValue = 1 << 24
)

// Bytes serializes the record as
//
//	flag byte: blacklist in the low 7 bits, PolicyExpiresWithConsensus in the high bit
//	for non PolicyOnly records: varint count, then count * (start int32 LE, stop int32 LE)
func (d *FrozenTXOData) Bytes() []byte {
	flag := byte(d.Blacklist) & blacklistMask

	if d.Blacklist == BlacklistPolicyOnly {
		return []byte{flag}
	}

	if d.PolicyExpiresWithConsensus {
		flag |= policyExpiresFlag
	}

	buf := bytes.NewBuffer(make([]byte, 0, 1+9+len(d.EnforceAtHeight)*heightIntervalSize))
	buf.WriteByte(flag)

	// writes to a bytes.Buffer do not fail
	_ = wire.WriteVarInt(buf, 0, uint64(len(d.EnforceAtHeight)))

	var b [heightIntervalSize]byte

	for _, interval := range d.EnforceAtHeight {
		binary.LittleEndian.PutUint32(b[:4], uint32(interval.Start))
		binary.LittleEndian.PutUint32(b[4:], uint32(interval.Stop))
		buf.Write(b[:])
	}

	return buf.Bytes()
}

func NewFrozenTXODataFromBytes(dataBytes []byte) (*FrozenTXOData, error) {
	if len(dataBytes) == 0 {
		return nil, errors.NewProcessingError("frozen TXO data is empty")
	}

	d := &FrozenTXOData{
		Blacklist: Blacklist(dataBytes[0] & blacklistMask),
	}

	if !d.Blacklist.valid() {
		return nil, errors.NewProcessingError("invalid blacklist %d in frozen TXO data", dataBytes[0]&blacklistMask)
	}

	if d.Blacklist == BlacklistPolicyOnly {
		return d, nil
	}

	d.PolicyExpiresWithConsensus = dataBytes[0]&policyExpiresFlag != 0

	buf := bytes.NewReader(dataBytes[1:])

	n, err := wire.ReadVarInt(buf, 0)
	if err != nil {
		return nil, errors.NewProcessingError("failed to read interval count", err)
	}

	if n > uint64(buf.Len()/heightIntervalSize) || n > maxDecodeCountPerValue {
		return nil, errors.NewProcessingError("interval count %d exceeds remaining %d bytes", n, buf.Len())
	}

	if n > 0 {
		d.EnforceAtHeight = make([]HeightInterval, n)
	}

	var b [heightIntervalSize]byte

	for i := range d.EnforceAtHeight {
		if _, err = io.ReadFull(buf, b[:]); err != nil {
			return nil, errors.NewProcessingError("failed to read interval %d", i, err)
		}

		d.EnforceAtHeight[i] = HeightInterval{
			Start: int32(binary.LittleEndian.Uint32(b[:4])),
			Stop:  int32(binary.LittleEndian.Uint32(b[4:])),
		}
	}

	return d, nil
}

// Bytes serializes the record as enforceAtHeight int32 LE, varint count, then count outpoints
// of txid(32) and index uint32 LE.
func (w *WhitelistedTxData) Bytes() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, 4+9+len(w.ConfiscatedTXOs)*outpointSize))

	var b [4]byte

	binary.LittleEndian.PutUint32(b[:], uint32(w.EnforceAtHeight))
	buf.Write(b[:])

	_ = wire.WriteVarInt(buf, 0, uint64(len(w.ConfiscatedTXOs)))

	for _, o := range w.ConfiscatedTXOs {
		buf.Write(appendOutpoint(nil, o))
	}

	return buf.Bytes()
}

func NewWhitelistedTxDataFromBytes(dataBytes []byte) (*WhitelistedTxData, error) {
	if len(dataBytes) < 4 {
		return nil, errors.NewProcessingError("whitelisted tx data too short: %d bytes", len(dataBytes))
	}

	w := &WhitelistedTxData{
		EnforceAtHeight: int32(binary.LittleEndian.Uint32(dataBytes[:4])),
	}

	buf := bytes.NewReader(dataBytes[4:])

	n, err := wire.ReadVarInt(buf, 0)
	if err != nil {
		return nil, errors.NewProcessingError("failed to read outpoint count", err)
	}

	if n > uint64(buf.Len()/outpointSize) || n > maxDecodeCountPerValue {
		return nil, errors.NewProcessingError("outpoint count %d exceeds remaining %d bytes", n, buf.Len())
	}

	if n > 0 {
		w.ConfiscatedTXOs = make([]Outpoint, n)
	}

	var b [outpointSize]byte

	for i := range w.ConfiscatedTXOs {
		if _, err = io.ReadFull(buf, b[:]); err != nil {
			return nil, errors.NewProcessingError("failed to read outpoint %d", i, err)
		}

		w.ConfiscatedTXOs[i], _ = parseOutpoint(b[:])
	}

	return w, nil
}
