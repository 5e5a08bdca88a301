// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package record

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/meridianstake/meridian/meridian"
)

// Sign signs the record's signing hash with the given private key.
func Sign(r *Record, priv *ecdsa.PrivateKey) ([]byte, error) {
	hash := r.SigningHash()
	sig, err := crypto.Sign(hash.Bytes(), priv)
	if err != nil {
		return nil, errors.Wrap(err, "sign record")
	}
	return sig, nil
}

// Signer recovers the address that signed the record.
func Signer(r *Record, sig []byte) (meridian.Address, error) {
	hash := r.SigningHash()
	pub, err := crypto.SigToPub(hash.Bytes(), sig)
	if err != nil {
		return meridian.Address{}, errors.Wrap(err, "recover record signer")
	}
	return meridian.Address(crypto.PubkeyToAddress(*pub)), nil
}
