// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package oracle implements the attestation validation and accounting core.
// It ingests attested windows of consensus-layer activity, accepts or rejects
// them with arithmetic bounds, escalates ambiguous updates to a pending slot
// for manual resolution, and forwards confirmed returns downstream.
package oracle

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/meridianstake/meridian/auditdb"
	"github.com/meridianstake/meridian/authority"
	"github.com/meridianstake/meridian/co"
	"github.com/meridianstake/meridian/gov"
	"github.com/meridianstake/meridian/kv"
	"github.com/meridianstake/meridian/log"
	"github.com/meridianstake/meridian/meridian"
	"github.com/meridianstake/meridian/pauser"
	"github.com/meridianstake/meridian/record"
	"github.com/meridianstake/meridian/returns"
	"github.com/meridianstake/meridian/staking"
)

var logger = log.WithContext("pkg", "oracle")

const (
	recordStoreName   = "oracle.records"
	propStoreName     = "oracle.props"
	settingsStoreName = "oracle.settings"
)

var pendingKey = []byte("pending-update")

// Oracle is the record validation and pending-update state machine.
//
// All state transitions are serialized by an internal lock, so each
// submission runs to completion with no interleaving.
type Oracle struct {
	mu sync.Mutex

	store     *Store
	propStore kv.GetPutter
	bounds    *Bounds

	staking    staking.Reader
	aggregator returns.Aggregator
	pauser     pauser.Controller
	auth       *authority.Authority
	audit      *auditdb.AuditDB

	pending       *record.Record
	committedFeed co.Signal
}

// New opens the oracle over the given db, seeding the sentinel record from
// the staking ledger's initialization block on first open.
func New(
	db kv.GetPutter,
	stk staking.Reader,
	aggregator returns.Aggregator,
	pc pauser.Controller,
	auth *authority.Authority,
	audit *auditdb.AuditDB,
) (*Oracle, error) {
	store, err := NewStore(kv.Bucket(recordStoreName).NewStore(db))
	if err != nil {
		return nil, err
	}

	o := &Oracle{
		store:      store,
		propStore:  kv.Bucket(propStoreName).NewStore(db),
		bounds:     NewBounds(gov.New(kv.Bucket(settingsStoreName).NewStore(db))),
		staking:    stk,
		aggregator: aggregator,
		pauser:     pc,
		auth:       auth,
		audit:      audit,
	}

	if store.Count() == 0 {
		initBlock, err := stk.InitializationBlockNumber()
		if err != nil {
			return nil, err
		}
		if err := store.Append(record.Genesis(initBlock)); err != nil {
			return nil, err
		}
		logger.Info("sentinel record seeded", "initBlock", initBlock)
	}

	if err := o.loadPending(); err != nil {
		return nil, err
	}
	metricNumRecords().Set(int64(store.Count()))
	if o.pending != nil {
		metricPendingUpdate().Set(1)
	}
	return o, nil
}

// Bounds returns the governance-configurable sanity bounds.
func (o *Oracle) Bounds() *Bounds {
	return o.bounds
}

// NumRecords returns the current record count.
func (o *Oracle) NumRecords() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.store.Count()
}

// LatestRecord returns the last committed record.
func (o *Oracle) LatestRecord() (*record.Record, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.store.Latest()
}

// RecordAt returns the committed record at the given index.
func (o *Oracle) RecordAt(index uint64) (*record.Record, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.store.At(index)
}

// PendingUpdate returns the record awaiting manual resolution, failing with
// ErrNoUpdatePending when the state machine is clear.
func (o *Oracle) PendingUpdate() (*record.Record, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pending == nil {
		return nil, ErrNoUpdatePending
	}
	return o.pending.Copy(), nil
}

// HasPendingUpdate returns whether an update awaits resolution.
func (o *Oracle) HasPendingUpdate() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pending != nil
}

// NewCommittedWaiter creates a waiter signaled on every committed record.
func (o *Oracle) NewCommittedWaiter() co.Waiter {
	return o.committedFeed.NewWaiter()
}

// ReceiveRecord submits a new record on behalf of caller, who must hold the
// updater role. Hard validation failures return an error and change nothing.
// A sanity-bound violation is not an error: the record parks in the pending
// slot, the protocol pauses, and the returned Rejection describes the
// violated rule.
func (o *Oracle) ReceiveRecord(caller meridian.Address, rec *record.Record) (*Rejection, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.checkRole(authority.RoleUpdater, caller); err != nil {
		return nil, err
	}
	paused, err := o.pauser.IsSubmitPaused()
	if err != nil {
		return nil, err
	}
	if paused {
		return nil, ErrPaused
	}
	if o.pending != nil {
		return nil, ErrCannotUpdateWhileUpdatePending
	}

	rec = rec.Copy() // also normalizes nil amounts to zero

	if err := o.validateUpdate(o.store.Count()-1, rec); err != nil {
		return nil, err
	}

	prev, err := o.store.Latest()
	if err != nil {
		return nil, err
	}
	bounds, err := o.bounds.Snapshot()
	if err != nil {
		return nil, err
	}
	if rejection := sanityCheckUpdate(prev, rec, bounds); rejection != nil {
		if err := o.enterPending(rec, rejection); err != nil {
			return nil, err
		}
		return rejection, nil
	}

	if err := o.pushRecord(rec); err != nil {
		return nil, err
	}
	return nil, nil
}

// AcceptPendingUpdate commits the pending record. Caller must hold the
// resolver role. Accepting does not lift the pause; governance resumes
// separately once the anomaly is understood.
func (o *Oracle) AcceptPendingUpdate(caller meridian.Address) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.checkRole(authority.RoleResolver, caller); err != nil {
		return err
	}
	if o.pending == nil {
		return ErrNoUpdatePending
	}

	pending := o.pending
	if err := o.clearPending(); err != nil {
		return err
	}
	if err := o.pushRecord(pending); err != nil {
		return err
	}

	o.auditEvent(auditdb.KindPendingAccepted, "acceptPendingUpdate", pending)
	logger.Info("pending update accepted", "caller", caller, "record", pending)
	return nil
}

// RejectPendingUpdate discards the pending record. Caller must hold the
// resolver role.
func (o *Oracle) RejectPendingUpdate(caller meridian.Address) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.checkRole(authority.RoleResolver, caller); err != nil {
		return err
	}
	if o.pending == nil {
		return ErrNoUpdatePending
	}

	rejected := o.pending
	if err := o.clearPending(); err != nil {
		return err
	}

	o.auditEvent(auditdb.KindPendingRejected, "rejectPendingUpdate", rejected)
	logger.Warn("pending update rejected", "caller", caller, "record", rejected)
	return nil
}

// ModifyExistingRecord replaces a committed non-sentinel record in place.
// Caller must hold the resolver role. The block range is immutable and the
// replacement is re-validated against its stored predecessor. Withdrawn
// amounts newly disclosed by the replacement are forwarded downstream once,
// flagged to exclude execution-layer rewards so already-processed flows are
// not double counted.
func (o *Oracle) ModifyExistingRecord(caller meridian.Address, index uint64, rec *record.Record) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.checkRole(authority.RoleResolver, caller); err != nil {
		return err
	}
	if index == 0 {
		return ErrCannotModifyInitialRecord
	}
	existing, err := o.store.At(index)
	if err != nil {
		return err
	}
	if !existing.SameRange(rec) {
		return errors.Wrapf(ErrInvalidRecordModification,
			"stored [%d, %d], supplied [%d, %d]",
			existing.UpdateStartBlock, existing.UpdateEndBlock,
			rec.UpdateStartBlock, rec.UpdateEndBlock)
	}

	rec = rec.Copy()
	if err := o.validateUpdate(index-1, rec); err != nil {
		return err
	}
	if err := o.store.Replace(index, rec); err != nil {
		return err
	}
	metricRecordsModified().Add(1)

	rewardDelta := disclosedDelta(rec.WindowWithdrawnRewardAmount, existing.WindowWithdrawnRewardAmount)
	principalDelta := disclosedDelta(rec.WindowWithdrawnPrincipalAmount, existing.WindowWithdrawnPrincipalAmount)
	if rewardDelta.Sign() > 0 || principalDelta.Sign() > 0 {
		if err := o.aggregator.ProcessReturns(rewardDelta, principalDelta, false); err != nil {
			return err
		}
	}

	o.auditEvent(auditdb.KindRecordModified, "modifyExistingRecord", struct {
		Index  uint64         `json:"index"`
		Record *record.Record `json:"record"`
	}{index, rec})
	logger.Info("record modified", "caller", caller, "index", index, "record", rec)
	return nil
}

// setters for governance bounds, admin-gated, each emitting a
// configuration-change event naming the setting and its new value.

func (o *Oracle) SetMinReportSizeBlocks(caller meridian.Address, v uint64) error {
	return o.setBound(caller, SettingMinReportSizeBlocks, new(big.Int).SetUint64(v), func() error {
		return o.bounds.SetMinReportSizeBlocks(v)
	})
}

func (o *Oracle) SetMinDepositPerValidator(caller meridian.Address, v *big.Int) error {
	return o.setBound(caller, SettingMinDepositPerValidator, v, func() error {
		return o.bounds.SetMinDepositPerValidator(v)
	})
}

func (o *Oracle) SetMaxDepositPerValidator(caller meridian.Address, v *big.Int) error {
	return o.setBound(caller, SettingMaxDepositPerValidator, v, func() error {
		return o.bounds.SetMaxDepositPerValidator(v)
	})
}

func (o *Oracle) SetMinGainPerBlockPPT(caller meridian.Address, v uint64) error {
	return o.setBound(caller, SettingMinGainPerBlockPPT, new(big.Int).SetUint64(v), func() error {
		return o.bounds.SetMinGainPerBlockPPT(v)
	})
}

func (o *Oracle) SetMaxGainPerBlockPPT(caller meridian.Address, v uint64) error {
	return o.setBound(caller, SettingMaxGainPerBlockPPT, new(big.Int).SetUint64(v), func() error {
		return o.bounds.SetMaxGainPerBlockPPT(v)
	})
}

func (o *Oracle) SetMaxLossPPM(caller meridian.Address, v uint64) error {
	return o.setBound(caller, SettingMaxLossPPM, new(big.Int).SetUint64(v), func() error {
		return o.bounds.SetMaxLossPPM(v)
	})
}

func (o *Oracle) setBound(caller meridian.Address, name string, value *big.Int, set func() error) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.checkRole(authority.RoleAdmin, caller); err != nil {
		return err
	}
	if err := set(); err != nil {
		return err
	}
	o.auditEvent(auditdb.KindConfigChanged, name, struct {
		Setting string   `json:"setting"`
		Value   *big.Int `json:"value"`
	}{name, value})
	logger.Info("governance setting changed", "caller", caller, "setting", name, "value", value)
	return nil
}

// pushRecord appends a validated record and forwards its window withdrawals
// downstream. Fresh pushes carry execution-layer rewards.
func (o *Oracle) pushRecord(rec *record.Record) error {
	if err := o.store.Append(rec); err != nil {
		return err
	}
	metricRecordsCommitted().Add(1)
	metricNumRecords().Set(int64(o.store.Count()))

	if rec.WindowWithdrawnRewardAmount.Sign() > 0 || rec.WindowWithdrawnPrincipalAmount.Sign() > 0 {
		if err := o.aggregator.ProcessReturns(
			rec.WindowWithdrawnRewardAmount,
			rec.WindowWithdrawnPrincipalAmount,
			true,
		); err != nil {
			return err
		}
	}

	o.auditEvent(auditdb.KindRecordCommitted, "pushRecord", rec)
	logger.Info("record committed", "record", rec)
	o.committedFeed.Broadcast()
	return nil
}

// enterPending parks the record for manual resolution and trips the
// protocol-wide circuit breaker.
func (o *Oracle) enterPending(rec *record.Record, rejection *Rejection) error {
	data, err := rlp.EncodeToBytes(rec)
	if err != nil {
		return err
	}
	if err := o.propStore.Put(pendingKey, data); err != nil {
		return err
	}
	o.pending = rec
	metricPendingUpdate().Set(1)
	metricSanityFailures().AddWithLabel(1, map[string]string{"reason": rejection.Reason})

	if err := o.pauser.PauseAll(); err != nil {
		return err
	}

	o.auditEvent(auditdb.KindPendingEntered, "oracleRecordFailedSanityCheck", struct {
		Rejection *Rejection     `json:"rejection"`
		Record    *record.Record `json:"record"`
	}{rejection, rec})
	logger.Warn("record failed sanity check",
		"reason", rejection.Reason,
		"value", rejection.Value,
		"bound", rejection.Bound,
		"record", rec,
	)
	return nil
}

func (o *Oracle) clearPending() error {
	if err := o.propStore.Delete(pendingKey); err != nil {
		return err
	}
	o.pending = nil
	metricPendingUpdate().Set(0)
	return nil
}

func (o *Oracle) loadPending() error {
	data, err := o.propStore.Get(pendingKey)
	if err != nil {
		if o.propStore.IsNotFound(err) {
			return nil
		}
		return err
	}
	var rec record.Record
	if err := rlp.DecodeBytes(data, &rec); err != nil {
		return err
	}
	o.pending = &rec
	return nil
}

func (o *Oracle) checkRole(role authority.Role, caller meridian.Address) error {
	has, err := o.auth.Has(role, caller)
	if err != nil {
		return err
	}
	if !has {
		return errors.Wrapf(ErrUnauthorized, "%v is not %s", caller, role)
	}
	return nil
}

func (o *Oracle) auditEvent(kind auditdb.Kind, name string, data any) {
	if o.audit == nil {
		return
	}
	if err := o.audit.Record(kind, name, data); err != nil {
		logger.Error("failed to record audit event", "kind", kind, "err", err)
	}
}

func disclosedDelta(newValue, oldValue *big.Int) *big.Int {
	if newValue.Cmp(oldValue) <= 0 {
		return new(big.Int)
	}
	return new(big.Int).Sub(newValue, oldValue)
}
