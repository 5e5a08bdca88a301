// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package meridian

import "math/big"

// Constants of the oracle protocol.
const (
	// PPMDenominator parts-per-million fixed point denominator.
	PPMDenominator uint64 = 1_000_000
	// PPTDenominator parts-per-trillion fixed point denominator.
	PPTDenominator uint64 = 1_000_000_000_000

	// InitialMinReportSizeBlocks minimum number of consensus-layer blocks an
	// oracle record window must cover.
	InitialMinReportSizeBlocks uint64 = 100

	// InitialMinConsensusLayerGainPerBlockPPT ~2.1% APR floor at 12s slots.
	InitialMinConsensusLayerGainPerBlockPPT uint64 = 1903
	// InitialMaxConsensusLayerGainPerBlockPPT ~210% APR ceiling at 12s slots.
	InitialMaxConsensusLayerGainPerBlockPPT uint64 = 190250
	// InitialMaxConsensusLayerLossPPM 0.1% tolerated gross loss per window.
	InitialMaxConsensusLayerLossPPM uint64 = 1000
)

// Keys of governance settings.
var (
	KeyMinReportSizeBlocks    = Blake2b([]byte("min-report-size-blocks"))
	KeyMinDepositPerValidator = Blake2b([]byte("min-deposit-per-validator"))
	KeyMaxDepositPerValidator = Blake2b([]byte("max-deposit-per-validator"))
	KeyMinGainPerBlockPPT     = Blake2b([]byte("min-cl-gain-per-block-ppt"))
	KeyMaxGainPerBlockPPT     = Blake2b([]byte("max-cl-gain-per-block-ppt"))
	KeyMaxLossPPM             = Blake2b([]byte("max-cl-loss-ppm"))
)

// InitialDepositPerValidator both the min and max deposit-per-validator
// bounds start at the consensus-layer activation amount of 32 ETH.
var InitialDepositPerValidator = new(big.Int).Mul(big.NewInt(32), big.NewInt(1e18))
