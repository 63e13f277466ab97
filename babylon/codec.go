// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package babylon

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/btcsuite/utxoengine/script"
	"github.com/btcsuite/utxoengine/utxoerr"
	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the StakingInfo message.
const (
	fieldStakerKey      protowire.Number = 1
	fieldFPKey          protowire.Number = 2
	fieldStakingTime    protowire.Number = 3
	fieldCovenantKeys   protowire.Number = 4
	fieldCovenantQuorum protowire.Number = 5
)

const (
	// TagSize is the length of the network tag of a staking OP_RETURN.
	TagSize = 4

	// opReturnVersion is the only staking OP_RETURN version.
	opReturnVersion = 0

	// OpReturnDataSize is the payload of a staking OP_RETURN: tag,
	// version, staker key, finality provider key and staking time.
	OpReturnDataSize = TagSize + 1 + 2*script.XOnlyKeySize + 2
)

// ErrMalformedStakingInfo is returned for StakingInfo bytes that do not
// decode.
var ErrMalformedStakingInfo = fmt.Errorf("%w: malformed staking info",
	utxoerr.ErrParse)

// MarshalProto encodes the staking info as a StakingInfo protobuf message.
func (s *StakingInfo) MarshalProto() []byte {
	var b []byte

	b = protowire.AppendTag(b, fieldStakerKey, protowire.BytesType)
	b = protowire.AppendBytes(b, s.StakerKey[:])

	b = protowire.AppendTag(b, fieldFPKey, protowire.BytesType)
	b = protowire.AppendBytes(b, s.FinalityProviderKey[:])

	b = protowire.AppendTag(b, fieldStakingTime, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(s.StakingTime))

	for _, key := range s.CovenantKeys {
		b = protowire.AppendTag(b, fieldCovenantKeys, protowire.BytesType)
		b = protowire.AppendBytes(b, key[:])
	}

	b = protowire.AppendTag(b, fieldCovenantQuorum, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(s.CovenantQuorum))

	return b
}

// UnmarshalStakingInfo decodes and validates a StakingInfo protobuf
// message. Unknown fields are skipped.
func UnmarshalStakingInfo(b []byte) (*StakingInfo, error) {
	var (
		staker, fp   []byte
		stakingTime  uint64
		covenantKeys [][]byte
		quorum       uint64
	)

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %w", ErrMalformedStakingInfo,
				protowire.ParseError(n))
		}
		b = b[n:]

		var (
			want  protowire.Type
			known = true
		)
		switch num {
		case fieldStakerKey, fieldFPKey, fieldCovenantKeys:
			want = protowire.BytesType
		case fieldStakingTime, fieldCovenantQuorum:
			want = protowire.VarintType
		default:
			known = false
		}

		if !known {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("%w: %w",
					ErrMalformedStakingInfo,
					protowire.ParseError(n))
			}
			b = b[n:]

			continue
		}

		if typ != want {
			return nil, fmt.Errorf("%w: field %d has wire type %d",
				ErrMalformedStakingInfo, num, typ)
		}

		if want == protowire.BytesType {
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: %w",
					ErrMalformedStakingInfo,
					protowire.ParseError(n))
			}
			b = b[n:]

			v = append([]byte(nil), v...)
			switch num {
			case fieldStakerKey:
				staker = v
			case fieldFPKey:
				fp = v
			default:
				covenantKeys = append(covenantKeys, v)
			}

			continue
		}

		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %w", ErrMalformedStakingInfo,
				protowire.ParseError(n))
		}
		b = b[n:]

		if num == fieldStakingTime {
			stakingTime = v
		} else {
			quorum = v
		}
	}

	if stakingTime > math.MaxUint16 {
		return nil, fmt.Errorf("%w: staking time %d",
			ErrInvalidStakingInfo, stakingTime)
	}
	if quorum > math.MaxUint32 {
		return nil, fmt.Errorf("%w: quorum %d", ErrInvalidQuorum,
			quorum)
	}

	return NewStakingInfo(
		staker, fp, uint16(stakingTime), covenantKeys, uint32(quorum),
	)
}

// OpReturnScript returns the OP_RETURN output announcing a delegation:
// `tag || version || staker || finality provider || staking time`, the
// time in big endian.
func OpReturnScript(tag []byte, info *StakingInfo) ([]byte, error) {
	if len(tag) != TagSize {
		return nil, fmt.Errorf("%w: tag of %d bytes",
			ErrInvalidStakingInfo, len(tag))
	}

	data := make([]byte, 0, OpReturnDataSize)
	data = append(data, tag...)
	data = append(data, opReturnVersion)
	data = append(data, info.StakerKey[:]...)
	data = append(data, info.FinalityProviderKey[:]...)
	data = binary.BigEndian.AppendUint16(data, info.StakingTime)

	return script.OpReturn(data)
}
