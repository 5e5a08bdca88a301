// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/meridianstake/meridian/meridian"
)

// SignedRequest is the envelope for privileged API calls. The caller signs
// blake2b(op || payload) with their protocol identity key; the handler
// recovers the signer and checks it against the role registry.
type SignedRequest struct {
	Payload   json.RawMessage `json:"payload"`
	Signature string          `json:"signature"`
}

// SignerOf recovers the address that signed the request for the given
// operation name.
func (r *SignedRequest) SignerOf(op string) (meridian.Address, error) {
	sig, err := ParseHexData(r.Signature)
	if err != nil {
		return meridian.Address{}, errors.WithMessage(err, "signature")
	}
	hash := meridian.Blake2b([]byte(op), r.Payload)
	pub, err := crypto.SigToPub(hash.Bytes(), sig)
	if err != nil {
		return meridian.Address{}, errors.WithMessage(err, "recover signer")
	}
	return meridian.Address(crypto.PubkeyToAddress(*pub)), nil
}

// SignRequest builds a signed envelope for the given operation and payload.
// It is primarily a client and test helper.
func SignRequest(op string, payload any, sign func(hash meridian.Bytes32) ([]byte, error)) (*SignedRequest, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	sig, err := sign(meridian.Blake2b([]byte(op), data))
	if err != nil {
		return nil, err
	}
	return &SignedRequest{
		Payload:   data,
		Signature: "0x" + hex.EncodeToString(sig),
	}, nil
}

// ParseHexData parses a 0x-prefixed hex string.
func ParseHexData(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") {
		return nil, errors.New("invalid prefix")
	}
	data, err := hex.DecodeString(s[2:])
	if err != nil {
		return nil, err
	}
	return data, nil
}
