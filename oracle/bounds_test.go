// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianstake/meridian/gov"
	"github.com/meridianstake/meridian/lvldb"
	"github.com/meridianstake/meridian/meridian"
)

func newTestBounds(t *testing.T) *Bounds {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewBounds(gov.New(db))
}

func TestBoundsDefaults(t *testing.T) {
	b := newTestBounds(t)

	s, err := b.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, meridian.InitialMinReportSizeBlocks, s.MinReportSizeBlocks)
	assert.Equal(t, meridian.InitialDepositPerValidator, s.MinDepositPerValidator)
	assert.Equal(t, meridian.InitialDepositPerValidator, s.MaxDepositPerValidator)
	assert.Equal(t, meridian.InitialMinConsensusLayerGainPerBlockPPT, s.MinGainPerBlockPPT)
	assert.Equal(t, meridian.InitialMaxConsensusLayerGainPerBlockPPT, s.MaxGainPerBlockPPT)
	assert.Equal(t, meridian.InitialMaxConsensusLayerLossPPM, s.MaxLossPPM)
}

func TestBoundsSetters(t *testing.T) {
	b := newTestBounds(t)

	require.NoError(t, b.SetMinReportSizeBlocks(50))
	v, err := b.MinReportSizeBlocks()
	require.NoError(t, err)
	assert.Equal(t, uint64(50), v)

	require.NoError(t, b.SetMaxDepositPerValidator(big.NewInt(2e18)))
	require.NoError(t, b.SetMinDepositPerValidator(big.NewInt(1e18)))
	minDep, err := b.MinDepositPerValidator()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1e18), minDep)

	require.NoError(t, b.SetMaxGainPerBlockPPT(200000))
	require.NoError(t, b.SetMinGainPerBlockPPT(100))
	require.NoError(t, b.SetMaxLossPPM(2000))
}

func TestBoundsSetterValidation(t *testing.T) {
	b := newTestBounds(t)

	assert.Error(t, b.SetMinReportSizeBlocks(0))

	// deposit bounds must stay ordered
	assert.Error(t, b.SetMinDepositPerValidator(nil))
	assert.Error(t, b.SetMinDepositPerValidator(big.NewInt(-1)))
	assert.Error(t, b.SetMinDepositPerValidator(
		new(big.Int).Add(meridian.InitialDepositPerValidator, big.NewInt(1))))
	assert.Error(t, b.SetMaxDepositPerValidator(
		new(big.Int).Sub(meridian.InitialDepositPerValidator, big.NewInt(1))))

	// gain bounds must stay ordered, fractions capped at 1.0
	assert.Error(t, b.SetMinGainPerBlockPPT(meridian.PPTDenominator+1))
	assert.Error(t, b.SetMaxGainPerBlockPPT(meridian.PPTDenominator+1))
	assert.Error(t, b.SetMinGainPerBlockPPT(meridian.InitialMaxConsensusLayerGainPerBlockPPT+1))
	assert.Error(t, b.SetMaxGainPerBlockPPT(meridian.InitialMinConsensusLayerGainPerBlockPPT-1))

	assert.Error(t, b.SetMaxLossPPM(meridian.PPMDenominator+1))
	require.NoError(t, b.SetMaxLossPPM(meridian.PPMDenominator))
}
