// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/meridianstake/meridian/gov"
	"github.com/meridianstake/meridian/meridian"
)

// Names of governance settings, as emitted in configuration-change events.
const (
	SettingMinReportSizeBlocks    = "minReportSizeBlocks"
	SettingMinDepositPerValidator = "minDepositPerValidator"
	SettingMaxDepositPerValidator = "maxDepositPerValidator"
	SettingMinGainPerBlockPPT     = "minConsensusLayerGainPerBlockPPT"
	SettingMaxGainPerBlockPPT     = "maxConsensusLayerGainPerBlockPPT"
	SettingMaxLossPPM             = "maxConsensusLayerLossPPM"
)

// Bounds holds the governance-configurable sanity check parameters, reading
// through to the settings registry and falling back to protocol defaults for
// settings never set.
type Bounds struct {
	reg *gov.Registry
}

// NewBounds creates bounds over the given registry.
func NewBounds(reg *gov.Registry) *Bounds {
	return &Bounds{reg}
}

// MinReportSizeBlocks minimum window size in blocks.
func (b *Bounds) MinReportSizeBlocks() (uint64, error) {
	return b.getUint64(meridian.KeyMinReportSizeBlocks, meridian.InitialMinReportSizeBlocks)
}

// MinDepositPerValidator lower bound for window deposits per new validator.
func (b *Bounds) MinDepositPerValidator() (*big.Int, error) {
	return b.getBig(meridian.KeyMinDepositPerValidator, meridian.InitialDepositPerValidator)
}

// MaxDepositPerValidator upper bound for window deposits per new validator.
func (b *Bounds) MaxDepositPerValidator() (*big.Int, error) {
	return b.getBig(meridian.KeyMaxDepositPerValidator, meridian.InitialDepositPerValidator)
}

// MinGainPerBlockPPT lower bound of per-block consensus layer gain, in parts
// per trillion.
func (b *Bounds) MinGainPerBlockPPT() (uint64, error) {
	return b.getUint64(meridian.KeyMinGainPerBlockPPT, meridian.InitialMinConsensusLayerGainPerBlockPPT)
}

// MaxGainPerBlockPPT upper bound of per-block consensus layer gain, in parts
// per trillion.
func (b *Bounds) MaxGainPerBlockPPT() (uint64, error) {
	return b.getUint64(meridian.KeyMaxGainPerBlockPPT, meridian.InitialMaxConsensusLayerGainPerBlockPPT)
}

// MaxLossPPM upper bound of per-window consensus layer loss, in parts per
// million.
func (b *Bounds) MaxLossPPM() (uint64, error) {
	return b.getUint64(meridian.KeyMaxLossPPM, meridian.InitialMaxConsensusLayerLossPPM)
}

// SetMinReportSizeBlocks sets the minimum window size.
func (b *Bounds) SetMinReportSizeBlocks(v uint64) error {
	if v == 0 {
		return errors.New("min report size must be positive")
	}
	return b.reg.Set(meridian.KeyMinReportSizeBlocks, new(big.Int).SetUint64(v))
}

// SetMinDepositPerValidator sets the deposit-per-validator lower bound.
func (b *Bounds) SetMinDepositPerValidator(v *big.Int) error {
	if v == nil || v.Sign() < 0 {
		return errors.New("min deposit per validator must be non-negative")
	}
	maxV, err := b.MaxDepositPerValidator()
	if err != nil {
		return err
	}
	if v.Cmp(maxV) > 0 {
		return errors.New("min deposit per validator above max")
	}
	return b.reg.Set(meridian.KeyMinDepositPerValidator, v)
}

// SetMaxDepositPerValidator sets the deposit-per-validator upper bound.
func (b *Bounds) SetMaxDepositPerValidator(v *big.Int) error {
	if v == nil || v.Sign() < 0 {
		return errors.New("max deposit per validator must be non-negative")
	}
	minV, err := b.MinDepositPerValidator()
	if err != nil {
		return err
	}
	if v.Cmp(minV) < 0 {
		return errors.New("max deposit per validator below min")
	}
	return b.reg.Set(meridian.KeyMaxDepositPerValidator, v)
}

// SetMinGainPerBlockPPT sets the per-block gain floor. The fraction is
// constrained to at most 1.0.
func (b *Bounds) SetMinGainPerBlockPPT(v uint64) error {
	if v > meridian.PPTDenominator {
		return errors.New("min gain fraction above 1.0")
	}
	maxV, err := b.MaxGainPerBlockPPT()
	if err != nil {
		return err
	}
	if v > maxV {
		return errors.New("min gain above max gain")
	}
	return b.reg.Set(meridian.KeyMinGainPerBlockPPT, new(big.Int).SetUint64(v))
}

// SetMaxGainPerBlockPPT sets the per-block gain ceiling. The fraction is
// constrained to at most 1.0.
func (b *Bounds) SetMaxGainPerBlockPPT(v uint64) error {
	if v > meridian.PPTDenominator {
		return errors.New("max gain fraction above 1.0")
	}
	minV, err := b.MinGainPerBlockPPT()
	if err != nil {
		return err
	}
	if v < minV {
		return errors.New("max gain below min gain")
	}
	return b.reg.Set(meridian.KeyMaxGainPerBlockPPT, new(big.Int).SetUint64(v))
}

// SetMaxLossPPM sets the per-window loss ceiling. The fraction is constrained
// to at most 1.0.
func (b *Bounds) SetMaxLossPPM(v uint64) error {
	if v > meridian.PPMDenominator {
		return errors.New("max loss fraction above 1.0")
	}
	return b.reg.Set(meridian.KeyMaxLossPPM, new(big.Int).SetUint64(v))
}

// Snapshot is the full bounds view, for operator inspection.
type Snapshot struct {
	MinReportSizeBlocks    uint64   `json:"minReportSizeBlocks"`
	MinDepositPerValidator *big.Int `json:"minDepositPerValidator"`
	MaxDepositPerValidator *big.Int `json:"maxDepositPerValidator"`
	MinGainPerBlockPPT     uint64   `json:"minConsensusLayerGainPerBlockPPT"`
	MaxGainPerBlockPPT     uint64   `json:"maxConsensusLayerGainPerBlockPPT"`
	MaxLossPPM             uint64   `json:"maxConsensusLayerLossPPM"`
}

// Snapshot reads all bounds at once.
func (b *Bounds) Snapshot() (*Snapshot, error) {
	var (
		s   Snapshot
		err error
	)
	if s.MinReportSizeBlocks, err = b.MinReportSizeBlocks(); err != nil {
		return nil, err
	}
	if s.MinDepositPerValidator, err = b.MinDepositPerValidator(); err != nil {
		return nil, err
	}
	if s.MaxDepositPerValidator, err = b.MaxDepositPerValidator(); err != nil {
		return nil, err
	}
	if s.MinGainPerBlockPPT, err = b.MinGainPerBlockPPT(); err != nil {
		return nil, err
	}
	if s.MaxGainPerBlockPPT, err = b.MaxGainPerBlockPPT(); err != nil {
		return nil, err
	}
	if s.MaxLossPPM, err = b.MaxLossPPM(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (b *Bounds) getUint64(key meridian.Bytes32, def uint64) (uint64, error) {
	has, err := b.reg.Has(key)
	if err != nil {
		return 0, err
	}
	if !has {
		return def, nil
	}
	v, err := b.reg.Get(key)
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

func (b *Bounds) getBig(key meridian.Bytes32, def *big.Int) (*big.Int, error) {
	has, err := b.reg.Has(key)
	if err != nil {
		return nil, err
	}
	if !has {
		return new(big.Int).Set(def), nil
	}
	return b.reg.Get(key)
}
