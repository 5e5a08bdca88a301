// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianstake/meridian/meridian"
)

func TestSignedRequestRoundTrip(t *testing.T) {
	priv, err := crypto.GenerateKey()
	require.NoError(t, err)

	signed, err := SignRequest("someOperation", map[string]int{"value": 42}, func(hash meridian.Bytes32) ([]byte, error) {
		return crypto.Sign(hash.Bytes(), priv)
	})
	require.NoError(t, err)

	signer, err := signed.SignerOf("someOperation")
	require.NoError(t, err)
	assert.Equal(t, meridian.Address(crypto.PubkeyToAddress(priv.PublicKey)), signer)

	// the operation name is part of the signed preimage
	other, err := signed.SignerOf("otherOperation")
	require.NoError(t, err)
	assert.NotEqual(t, signer, other)
}

func TestSignedRequestBadSignature(t *testing.T) {
	signed := &SignedRequest{Payload: []byte("{}"), Signature: "deadbeef"}
	_, err := signed.SignerOf("op")
	assert.Error(t, err)

	signed.Signature = "0xzz"
	_, err = signed.SignerOf("op")
	assert.Error(t, err)

	signed.Signature = "0xdeadbeef"
	_, err = signed.SignerOf("op")
	assert.Error(t, err)
}

func TestParseHexData(t *testing.T) {
	data, err := ParseHexData("0x01ff")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0xff}, data)

	_, err = ParseHexData("01ff")
	assert.Error(t, err)
}
