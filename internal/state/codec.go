package state

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

// GetAmount decodes a 256-bit amount. Absent keys read as zero.
func (s *State) GetAmount(key []byte) (*uint256.Int, error) {
	v, err := s.Get(key)
	if err != nil {
		return nil, err
	}
	if len(v) > 32 {
		return nil, fmt.Errorf("state: amount at %q is %d bytes", key, len(v))
	}
	return new(uint256.Int).SetBytes(v), nil
}

// SetAmount stores a 256-bit amount as 32 big-endian bytes. Zero deletes
// the key.
func (s *State) SetAmount(key []byte, v *uint256.Int) {
	if v == nil || v.IsZero() {
		s.Delete(key)
		return
	}
	b := v.Bytes32()
	s.Put(key, b[:])
}

// GetUint64 decodes a big-endian uint64. Absent keys read as zero.
func (s *State) GetUint64(key []byte) (uint64, error) {
	v, err := s.Get(key)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, nil
	}
	if len(v) != 8 {
		return 0, fmt.Errorf("state: uint64 at %q is %d bytes", key, len(v))
	}
	return binary.BigEndian.Uint64(v), nil
}

// SetUint64 stores n as 8 big-endian bytes. Zero deletes the key.
func (s *State) SetUint64(key []byte, n uint64) {
	if n == 0 {
		s.Delete(key)
		return
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], n)
	s.Put(key, buf[:])
}

// GetRLP decodes the RLP value at key into out. It reports false if the
// key is absent.
func (s *State) GetRLP(key []byte, out any) (bool, error) {
	v, err := s.Get(key)
	if err != nil {
		return false, err
	}
	if v == nil {
		return false, nil
	}
	if err := rlp.DecodeBytes(v, out); err != nil {
		return false, fmt.Errorf("state: decode %q: %w", key, err)
	}
	return true, nil
}

// PutRLP stores the RLP encoding of val at key.
func (s *State) PutRLP(key []byte, val any) error {
	data, err := rlp.EncodeToBytes(val)
	if err != nil {
		return fmt.Errorf("state: encode %q: %w", key, err)
	}
	s.Put(key, data)
	return nil
}
