// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianstake/meridian/lvldb"
	"github.com/meridianstake/meridian/record"
)

func testRecord(start, end uint64) *record.Record {
	return (&record.Record{
		UpdateStartBlock:             start,
		UpdateEndBlock:               end,
		CurrentTotalValidatorBalance: big.NewInt(1000),
	}).Copy()
}

func newTestStore(t *testing.T) *Store {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := NewStore(db)
	require.NoError(t, err)
	return store
}

func TestStoreEmpty(t *testing.T) {
	store := newTestStore(t)
	assert.Equal(t, uint64(0), store.Count())

	_, err := store.Latest()
	assert.Equal(t, ErrEmptyStore, err)

	_, err = store.At(0)
	assert.Equal(t, ErrRecordDoesNotExist, err)
}

func TestStoreAppend(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Append(record.Genesis(100)))
	require.NoError(t, store.Append(testRecord(101, 200)))
	require.NoError(t, store.Append(testRecord(201, 300)))
	assert.Equal(t, uint64(3), store.Count())

	latest, err := store.Latest()
	require.NoError(t, err)
	assert.Equal(t, testRecord(201, 300), latest)

	rec, err := store.At(1)
	require.NoError(t, err)
	assert.Equal(t, testRecord(101, 200), rec)
}

func TestStoreAppendDiscontinuity(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Append(record.Genesis(100)))

	// gap
	assert.Equal(t, ErrStoreDiscontinuity, store.Append(testRecord(102, 200)))
	// overlap
	assert.Equal(t, ErrStoreDiscontinuity, store.Append(testRecord(100, 200)))
	assert.Equal(t, uint64(1), store.Count())
}

func TestStoreReplace(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Append(record.Genesis(100)))
	require.NoError(t, store.Append(testRecord(101, 200)))

	assert.Equal(t, ErrCannotModifyInitialRecord, store.Replace(0, record.Genesis(100)))
	assert.Equal(t, ErrRecordDoesNotExist, store.Replace(2, testRecord(201, 300)))

	replacement := testRecord(101, 200)
	replacement.WindowWithdrawnRewardAmount = big.NewInt(7)
	require.NoError(t, store.Replace(1, replacement))

	rec, err := store.At(1)
	require.NoError(t, err)
	assert.Equal(t, replacement, rec)
	assert.Equal(t, uint64(2), store.Count())
}

func TestStoreReturnsCopies(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Append(record.Genesis(100)))
	require.NoError(t, store.Append(testRecord(101, 200)))

	rec, err := store.At(1)
	require.NoError(t, err)
	rec.CurrentTotalValidatorBalance.SetInt64(0)

	again, err := store.At(1)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), again.CurrentTotalValidatorBalance)
}

func TestStoreReopen(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	store, err := NewStore(db)
	require.NoError(t, err)
	require.NoError(t, store.Append(record.Genesis(100)))
	require.NoError(t, store.Append(testRecord(101, 200)))

	reopened, err := NewStore(db)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), reopened.Count())

	rec, err := reopened.At(1)
	require.NoError(t, err)
	assert.Equal(t, testRecord(101, 200), rec)
}
