// Package auth decides which principals may change the token supply.
package auth

import (
	"sync"

	"github.com/teut-network/teutledger/pkg/types"
)

// Authorizer gates mint and burn.
type Authorizer interface {
	IsAuthorized(caller types.Address) bool
}

// Owner authorizes a fixed set of addresses, normally the single genesis
// owner.
type Owner struct {
	mu     sync.RWMutex
	owners map[types.Address]struct{}
}

// NewOwner creates an authorizer for the given owners. The zero address
// is never authorized.
func NewOwner(owners ...types.Address) *Owner {
	o := &Owner{owners: make(map[types.Address]struct{}, len(owners))}
	for _, addr := range owners {
		if !addr.IsZero() {
			o.owners[addr] = struct{}{}
		}
	}
	return o
}

// IsAuthorized reports whether caller is an owner.
func (o *Owner) IsAuthorized(caller types.Address) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.owners[caller]
	return ok
}

// Owners returns the authorized addresses.
func (o *Owner) Owners() []types.Address {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]types.Address, 0, len(o.owners))
	for addr := range o.owners {
		out = append(out, addr)
	}
	return out
}

type allowAll struct{}

func (allowAll) IsAuthorized(types.Address) bool { return true }

// AllowAll authorizes every caller. Used for genesis and tests.
var AllowAll Authorizer = allowAll{}
