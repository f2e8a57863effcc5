package ledger

import "github.com/teut-network/teutledger/pkg/types"

var (
	supplyKey = []byte("supply")
	lockedKey = []byte("locked")
)

func balanceKey(addr types.Address) []byte {
	return append([]byte("bal/"), addr[:]...)
}

func lockedBalanceKey(addr types.Address) []byte {
	return append([]byte("lck/"), addr[:]...)
}

func allowanceKey(owner, spender types.Address) []byte {
	k := make([]byte, 0, 4+2*types.AddressSize)
	k = append(k, "alw/"...)
	k = append(k, owner[:]...)
	return append(k, spender[:]...)
}
