// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package authority implements the role registry backing privileged oracle
// operations. Each role maps to a set of member addresses; every privileged
// operation performs a capability check against this registry before touching
// any state.
package authority

import (
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/meridianstake/meridian/kv"
	"github.com/meridianstake/meridian/meridian"
)

// Role names a capability within the protocol.
type Role string

const (
	// RoleUpdater may submit new oracle records.
	RoleUpdater Role = "updater"
	// RoleResolver may accept or reject pending oracle updates and modify
	// existing records.
	RoleResolver Role = "resolver"
	// RoleAdmin may change governance settings and resume the protocol.
	RoleAdmin Role = "admin"
)

// Authority is the persistent role/address set registry.
type Authority struct {
	store kv.GetPutter
}

// New creates an authority over the given store.
func New(store kv.GetPutter) *Authority {
	return &Authority{store}
}

func memberKey(role Role, member meridian.Address) []byte {
	return append(append([]byte(role), '/'), member.Bytes()...)
}

// Grant adds member to the role's set. Granting an existing member is a no-op.
func (a *Authority) Grant(role Role, member meridian.Address) error {
	return a.store.Put(memberKey(role, member), []byte{1})
}

// Revoke removes member from the role's set.
func (a *Authority) Revoke(role Role, member meridian.Address) error {
	return a.store.Delete(memberKey(role, member))
}

// Has returns whether member holds the role.
func (a *Authority) Has(role Role, member meridian.Address) (bool, error) {
	return a.store.Has(memberKey(role, member))
}

// Members lists all addresses holding the role.
func (a *Authority) Members(role Role) ([]meridian.Address, error) {
	prefix := append([]byte(role), '/')
	iter := a.store.NewIterator(kv.Range{
		From: prefix,
		To:   util.BytesPrefix(prefix).Limit,
	})
	defer iter.Release()

	var members []meridian.Address
	for iter.Next() {
		key := iter.Key()
		members = append(members, meridian.BytesToAddress(key[len(prefix):]))
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return members, nil
}
