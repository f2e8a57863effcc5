package staking

import (
	"encoding/binary"

	"github.com/teut-network/teutledger/pkg/types"
)

var registryLenKey = []byte("stk/len")

func positionKey(addr types.Address) []byte {
	return append([]byte("stk/idx/"), addr[:]...)
}

func holderKey(pos uint64) []byte {
	return binary.BigEndian.AppendUint64([]byte("stk/who/"), pos)
}

func countKey(pos uint64) []byte {
	return binary.BigEndian.AppendUint64([]byte("stk/cnt/"), pos)
}

func recordKey(pos, i uint64) []byte {
	k := binary.BigEndian.AppendUint64([]byte("stk/rec/"), pos)
	return binary.BigEndian.AppendUint64(k, i)
}
