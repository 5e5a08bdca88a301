// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package gov implements the governance settings registry: named numeric
// values persisted in the kv store, read and mutated by validated setters in
// the owning components.
package gov

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/meridianstake/meridian/kv"
	"github.com/meridianstake/meridian/meridian"
)

// Registry provides access to governance settings.
type Registry struct {
	store kv.GetPutter
}

// New creates a registry over the given store.
func New(store kv.GetPutter) *Registry {
	return &Registry{store}
}

// Get native way to get a setting. Returns zero if the setting was never set.
func (r *Registry) Get(key meridian.Bytes32) (*big.Int, error) {
	data, err := r.store.Get(key.Bytes())
	if err != nil {
		if r.store.IsNotFound(err) {
			return new(big.Int), nil
		}
		return nil, err
	}
	var v big.Int
	if err := rlp.DecodeBytes(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Has returns whether the setting was ever set.
func (r *Registry) Has(key meridian.Bytes32) (bool, error) {
	return r.store.Has(key.Bytes())
}

// Set native way to set a setting.
func (r *Registry) Set(key meridian.Bytes32, value *big.Int) error {
	data, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return r.store.Put(key.Bytes(), data)
}
