// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package records_test

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianstake/meridian/api/records"
	"github.com/meridianstake/meridian/api/utils"
	"github.com/meridianstake/meridian/authority"
	"github.com/meridianstake/meridian/kv"
	"github.com/meridianstake/meridian/lvldb"
	"github.com/meridianstake/meridian/meridian"
	"github.com/meridianstake/meridian/oracle"
	"github.com/meridianstake/meridian/pauser"
	"github.com/meridianstake/meridian/record"
	"github.com/meridianstake/meridian/returns"
	"github.com/meridianstake/meridian/staking"
)

type testServer struct {
	url      string
	oracle   *oracle.Oracle
	pauser   *pauser.Pauser
	updater  *ecdsa.PrivateKey
	resolver *ecdsa.PrivateKey
	stranger *ecdsa.PrivateKey
}

func eth(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func addrOf(priv *ecdsa.PrivateKey) meridian.Address {
	return meridian.Address(crypto.PubkeyToAddress(priv.PublicKey))
}

func newTestServer(t *testing.T) *testServer {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ledger, err := staking.NewLedger(kv.Bucket("staking.").NewStore(db), 100)
	require.NoError(t, err)
	require.NoError(t, ledger.InitiateValidators(10, eth(320)))

	pc := pauser.New(kv.Bucket("pauser.").NewStore(db))
	auth := authority.New(kv.Bucket("authority.").NewStore(db))

	updaterKey, _ := crypto.GenerateKey()
	resolverKey, _ := crypto.GenerateKey()
	strangerKey, _ := crypto.GenerateKey()
	require.NoError(t, auth.Grant(authority.RoleUpdater, addrOf(updaterKey)))
	require.NoError(t, auth.Grant(authority.RoleResolver, addrOf(resolverKey)))

	acc := returns.NewAccumulator(kv.Bucket("returns.").NewStore(db))
	o, err := oracle.New(db, ledger, acc, pc, auth, nil)
	require.NoError(t, err)

	router := mux.NewRouter()
	records.New(o).Mount(router, "/records")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return &testServer{
		url:      ts.URL,
		oracle:   o,
		pauser:   pc,
		updater:  updaterKey,
		resolver: resolverKey,
		stranger: strangerKey,
	}
}

func firstRecord() *records.Record {
	return &records.Record{
		UpdateStartBlock:                    101,
		UpdateEndBlock:                      200,
		CurrentTotalValidatorBalance:        eth(320),
		CurrentNumValidatorsNotWithdrawable: 10,
		CumulativeProcessedDepositAmount:    eth(320),
	}
}

func signSubmission(t *testing.T, rec *records.Record, priv *ecdsa.PrivateKey) *records.SubmitRequest {
	sig, err := record.Sign(rec.ToRecord(), priv)
	require.NoError(t, err)
	return &records.SubmitRequest{
		Record:    rec,
		Signature: "0x" + hex.EncodeToString(sig),
	}
}

func httpPost(t *testing.T, url string, obj any) (int, []byte) {
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	res, err := http.Post(url, utils.JSONContentType, bytes.NewReader(data))
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, body
}

func httpGet(t *testing.T, url string) (int, []byte) {
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, body
}

func signedPost(t *testing.T, url, op string, payload any, priv *ecdsa.PrivateKey) (int, []byte) {
	signed, err := utils.SignRequest(op, payload, func(hash meridian.Bytes32) ([]byte, error) {
		return crypto.Sign(hash.Bytes(), priv)
	})
	require.NoError(t, err)
	return httpPost(t, url, signed)
}

func TestSubmitRecord(t *testing.T) {
	ts := newTestServer(t)

	status, body := httpPost(t, ts.url+"/records", signSubmission(t, firstRecord(), ts.updater))
	require.Equal(t, http.StatusOK, status, string(body))

	var result records.SubmitResult
	require.NoError(t, json.Unmarshal(body, &result))
	assert.True(t, result.Committed)
	assert.Nil(t, result.Rejection)

	status, body = httpGet(t, ts.url+"/records/latest")
	require.Equal(t, http.StatusOK, status)
	var latest records.Record
	require.NoError(t, json.Unmarshal(body, &latest))
	assert.Equal(t, firstRecord().ToRecord(), latest.ToRecord())

	status, body = httpGet(t, ts.url+"/records/count")
	require.Equal(t, http.StatusOK, status)
	var count records.CountResult
	require.NoError(t, json.Unmarshal(body, &count))
	assert.Equal(t, uint64(2), count.Count)

	status, _ = httpGet(t, ts.url+"/records/1")
	assert.Equal(t, http.StatusOK, status)

	status, _ = httpGet(t, ts.url+"/records/9")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSubmitRecordUnauthorized(t *testing.T) {
	ts := newTestServer(t)

	status, _ := httpPost(t, ts.url+"/records", signSubmission(t, firstRecord(), ts.stranger))
	assert.Equal(t, http.StatusForbidden, status)
}

func TestSubmitRecordBadRequests(t *testing.T) {
	ts := newTestServer(t)

	res, err := http.Post(ts.url+"/records", utils.JSONContentType, bytes.NewReader([]byte("not json")))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	// missing record
	status, _ := httpPost(t, ts.url+"/records", &records.SubmitRequest{Signature: "0x00"})
	assert.Equal(t, http.StatusBadRequest, status)

	// structural failure: window out of sequence
	bad := firstRecord()
	bad.UpdateStartBlock = 150
	status, _ = httpPost(t, ts.url+"/records", signSubmission(t, bad, ts.updater))
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSubmitSanityFailureAndResolve(t *testing.T) {
	ts := newTestServer(t)

	status, _ := httpPost(t, ts.url+"/records", signSubmission(t, firstRecord(), ts.updater))
	require.Equal(t, http.StatusOK, status)

	// a 3% balance drop trips the loss bound
	bad := firstRecord()
	bad.UpdateStartBlock = 201
	bad.UpdateEndBlock = 300
	bad.CurrentTotalValidatorBalance = eth(310)

	status, body := httpPost(t, ts.url+"/records", signSubmission(t, bad, ts.updater))
	require.Equal(t, http.StatusOK, status)
	var result records.SubmitResult
	require.NoError(t, json.Unmarshal(body, &result))
	assert.False(t, result.Committed)
	require.NotNil(t, result.Rejection)
	assert.Equal(t, "consensus layer balance change below minimum", result.Rejection.Reason)

	status, body = httpGet(t, ts.url+"/records/pending")
	require.Equal(t, http.StatusOK, status)
	var pending records.Record
	require.NoError(t, json.Unmarshal(body, &pending))
	assert.Equal(t, bad.ToRecord(), pending.ToRecord())

	// only the resolver may accept
	status, _ = signedPost(t, ts.url+"/records/pending/accept", "acceptPendingUpdate", nil, ts.stranger)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = signedPost(t, ts.url+"/records/pending/accept", "acceptPendingUpdate", nil, ts.resolver)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, uint64(3), ts.oracle.NumRecords())

	// the slot is clear now
	status, _ = httpGet(t, ts.url+"/records/pending")
	assert.Equal(t, http.StatusConflict, status)
	status, _ = signedPost(t, ts.url+"/records/pending/reject", "rejectPendingUpdate", nil, ts.resolver)
	assert.Equal(t, http.StatusConflict, status)
}

func TestSubmitWhilePaused(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, ts.pauser.PauseAll())

	status, _ := httpPost(t, ts.url+"/records", signSubmission(t, firstRecord(), ts.updater))
	assert.Equal(t, http.StatusConflict, status)
}

func TestModifyRecord(t *testing.T) {
	ts := newTestServer(t)

	status, _ := httpPost(t, ts.url+"/records", signSubmission(t, firstRecord(), ts.updater))
	require.Equal(t, http.StatusOK, status)

	replacement := firstRecord()
	replacement.WindowWithdrawnRewardAmount = big.NewInt(1e15)

	put := func(index uint64, payload *records.ModifyPayload, priv *ecdsa.PrivateKey) int {
		signed, err := utils.SignRequest("modifyExistingRecord", payload, func(hash meridian.Bytes32) ([]byte, error) {
			return crypto.Sign(hash.Bytes(), priv)
		})
		require.NoError(t, err)
		data, err := json.Marshal(signed)
		require.NoError(t, err)

		req, err := http.NewRequest(http.MethodPut, fmt.Sprintf("%s/records/%d", ts.url, index), bytes.NewReader(data))
		require.NoError(t, err)
		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		res.Body.Close()
		return res.StatusCode
	}

	assert.Equal(t, http.StatusForbidden,
		put(1, &records.ModifyPayload{Index: 1, Record: replacement}, ts.stranger))
	assert.Equal(t, http.StatusBadRequest,
		put(2, &records.ModifyPayload{Index: 1, Record: replacement}, ts.resolver))
	assert.Equal(t, http.StatusBadRequest,
		put(0, &records.ModifyPayload{Index: 0, Record: replacement}, ts.resolver))

	assert.Equal(t, http.StatusOK,
		put(1, &records.ModifyPayload{Index: 1, Record: replacement}, ts.resolver))

	rec, err := ts.oracle.RecordAt(1)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1e15), rec.WindowWithdrawnRewardAmount)
}
