// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package settings_test

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianstake/meridian/api/settings"
	"github.com/meridianstake/meridian/api/utils"
	"github.com/meridianstake/meridian/authority"
	"github.com/meridianstake/meridian/kv"
	"github.com/meridianstake/meridian/lvldb"
	"github.com/meridianstake/meridian/meridian"
	"github.com/meridianstake/meridian/oracle"
	"github.com/meridianstake/meridian/pauser"
	"github.com/meridianstake/meridian/returns"
	"github.com/meridianstake/meridian/staking"
)

type testServer struct {
	url      string
	oracle   *oracle.Oracle
	admin    *ecdsa.PrivateKey
	stranger *ecdsa.PrivateKey
}

func newTestServer(t *testing.T) *testServer {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ledger, err := staking.NewLedger(kv.Bucket("staking.").NewStore(db), 100)
	require.NoError(t, err)

	auth := authority.New(kv.Bucket("authority.").NewStore(db))
	adminKey, _ := crypto.GenerateKey()
	strangerKey, _ := crypto.GenerateKey()
	require.NoError(t, auth.Grant(authority.RoleAdmin, meridian.Address(crypto.PubkeyToAddress(adminKey.PublicKey))))

	o, err := oracle.New(db, ledger,
		returns.NewAccumulator(kv.Bucket("returns.").NewStore(db)),
		pauser.New(kv.Bucket("pauser.").NewStore(db)),
		auth, nil)
	require.NoError(t, err)

	router := mux.NewRouter()
	settings.New(o).Mount(router, "/settings")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return &testServer{ts.URL, o, adminKey, strangerKey}
}

func (ts *testServer) set(t *testing.T, name string, value *big.Int, priv *ecdsa.PrivateKey) int {
	signed, err := utils.SignRequest(name, &settings.SetPayload{Value: value}, func(hash meridian.Bytes32) ([]byte, error) {
		return crypto.Sign(hash.Bytes(), priv)
	})
	require.NoError(t, err)
	data, err := json.Marshal(signed)
	require.NoError(t, err)

	res, err := http.Post(ts.url+"/settings/"+name, utils.JSONContentType, bytes.NewReader(data))
	require.NoError(t, err)
	res.Body.Close()
	return res.StatusCode
}

func TestGetSettings(t *testing.T) {
	ts := newTestServer(t)

	res, err := http.Get(ts.url + "/settings")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	var snapshot oracle.Snapshot
	require.NoError(t, json.Unmarshal(body, &snapshot))
	assert.Equal(t, meridian.InitialMinReportSizeBlocks, snapshot.MinReportSizeBlocks)
	assert.Equal(t, meridian.InitialDepositPerValidator, snapshot.MaxDepositPerValidator)
}

func TestSetSetting(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusOK,
		ts.set(t, oracle.SettingMaxLossPPM, big.NewInt(2000), ts.admin))

	v, err := ts.oracle.Bounds().MaxLossPPM()
	require.NoError(t, err)
	assert.Equal(t, uint64(2000), v)

	assert.Equal(t, http.StatusOK,
		ts.set(t, oracle.SettingMinReportSizeBlocks, big.NewInt(50), ts.admin))
	assert.Equal(t, http.StatusOK,
		ts.set(t, oracle.SettingMinDepositPerValidator, big.NewInt(1e18), ts.admin))
}

func TestSetSettingErrors(t *testing.T) {
	ts := newTestServer(t)

	// only the admin may set
	assert.Equal(t, http.StatusForbidden,
		ts.set(t, oracle.SettingMaxLossPPM, big.NewInt(2000), ts.stranger))

	// unknown setting
	assert.Equal(t, http.StatusBadRequest,
		ts.set(t, "bogusSetting", big.NewInt(1), ts.admin))

	// validation failure
	assert.Equal(t, http.StatusBadRequest,
		ts.set(t, oracle.SettingMinReportSizeBlocks, big.NewInt(0), ts.admin))

	// out of uint64 range
	huge := new(big.Int).Lsh(big.NewInt(1), 80)
	assert.Equal(t, http.StatusBadRequest,
		ts.set(t, oracle.SettingMaxLossPPM, huge, ts.admin))

	// missing value
	signed, err := utils.SignRequest(oracle.SettingMaxLossPPM, &settings.SetPayload{}, func(hash meridian.Bytes32) ([]byte, error) {
		return crypto.Sign(hash.Bytes(), ts.admin)
	})
	require.NoError(t, err)
	data, err := json.Marshal(signed)
	require.NoError(t, err)
	res, err := http.Post(ts.url+"/settings/"+oracle.SettingMaxLossPPM, utils.JSONContentType, bytes.NewReader(data))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}
