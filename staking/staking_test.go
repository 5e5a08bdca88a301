// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianstake/meridian/lvldb"
	"github.com/meridianstake/meridian/staking"
)

func TestLedgerFreshState(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	ledger, err := staking.NewLedger(db, 12345)
	require.NoError(t, err)

	initBlock, err := ledger.InitializationBlockNumber()
	require.NoError(t, err)
	assert.Equal(t, uint64(12345), initBlock)

	total, err := ledger.TotalDepositedInValidators()
	require.NoError(t, err)
	assert.Equal(t, 0, total.Sign())

	n, err := ledger.NumInitiatedValidators()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)
}

func TestLedgerInitBlockSeededOnce(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	_, err = staking.NewLedger(db, 100)
	require.NoError(t, err)

	// reopening with a different value must not reseed
	ledger, err := staking.NewLedger(db, 999)
	require.NoError(t, err)

	initBlock, err := ledger.InitializationBlockNumber()
	require.NoError(t, err)
	assert.Equal(t, uint64(100), initBlock)
}

func TestInitiateValidators(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	ledger, err := staking.NewLedger(db, 0)
	require.NoError(t, err)

	deposit := new(big.Int).Mul(big.NewInt(64), big.NewInt(1e18))
	require.NoError(t, ledger.InitiateValidators(2, deposit))

	n, err := ledger.NumInitiatedValidators()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)

	total, err := ledger.TotalDepositedInValidators()
	require.NoError(t, err)
	assert.Equal(t, deposit, total)

	require.NoError(t, ledger.InitiateValidators(1, big.NewInt(1)))
	total, err = ledger.TotalDepositedInValidators()
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Add(deposit, big.NewInt(1)), total)

	assert.Error(t, ledger.InitiateValidators(0, big.NewInt(1)))
	assert.Error(t, ledger.InitiateValidators(1, big.NewInt(0)))
	assert.Error(t, ledger.InitiateValidators(1, nil))
}

func TestTopUp(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	ledger, err := staking.NewLedger(db, 0)
	require.NoError(t, err)

	require.NoError(t, ledger.TopUp(big.NewInt(1000)))
	require.NoError(t, ledger.TopUp(big.NewInt(500)))

	total, err := ledger.TotalDepositedInValidators()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1500), total)

	// top-ups do not mint validators
	n, err := ledger.NumInitiatedValidators()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)

	assert.Error(t, ledger.TopUp(big.NewInt(-1)))
}
