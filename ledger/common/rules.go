// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package common

import (
	"math"
	"math/big"
	"math/bits"
)

// CalculateMinFee computes the minimum fee for a transaction given its
// CBOR-encoded size and the linear fee parameters
func CalculateMinFee(txSize int, linearFee LinearFee) (uint64, error) {
	if txSize < 0 {
		return 0, invalidValue("LinearFee", "negative size: %d", txSize)
	}
	hi, variable := bits.Mul64(linearFee.Coefficient, uint64(txSize))
	if hi != 0 {
		return 0, invalidValue(
			"LinearFee",
			"fee for %d bytes overflows",
			txSize,
		)
	}
	fee, carry := bits.Add64(variable, linearFee.Constant, 0)
	if carry != 0 {
		return 0, invalidValue(
			"LinearFee",
			"fee for %d bytes overflows",
			txSize,
		)
	}
	return fee, nil
}

// ScriptExecutionCost returns the fee for the given execution budget, rounded
// up to a whole lovelace
func ScriptExecutionCost(exUnits ExUnits, prices ExUnitPrice) (uint64, error) {
	if exUnits.Memory == 0 && exUnits.Steps == 0 {
		return 0, nil
	}
	if prices.MemPrice == nil || prices.MemPrice.Rat == nil ||
		prices.StepPrice == nil || prices.StepPrice.Rat == nil {
		return 0, invalidValue(
			"ExUnitPrice",
			"execution unit prices are not set",
		)
	}
	total := new(big.Rat).Mul(
		prices.MemPrice.Rat,
		new(big.Rat).SetInt(new(big.Int).SetUint64(exUnits.Memory)),
	)
	total.Add(
		total,
		new(big.Rat).Mul(
			prices.StepPrice.Rat,
			new(big.Rat).SetInt(new(big.Int).SetUint64(exUnits.Steps)),
		),
	)
	if total.Sign() < 0 {
		return 0, invalidValue("ExUnitPrice", "negative execution cost")
	}
	// Ceiling of the rational
	quo, rem := new(big.Int).QuoRem(total.Num(), total.Denom(), new(big.Int))
	if rem.Sign() != 0 {
		quo.Add(quo, big.NewInt(1))
	}
	if !quo.IsUint64() {
		return 0, invalidValue("ExUnitPrice", "execution cost overflows")
	}
	return quo.Uint64(), nil
}

// CertificateDeposit returns the deposit taken and the refund paid out by a
// certificate. Every pool registration is treated as a new registration
func CertificateDeposit(
	cert Certificate,
	pparams ProtocolParameters,
) (deposit uint64, refund uint64) {
	switch cert.(type) {
	case *StakeRegistrationCertificate:
		return pparams.KeyDeposit, 0
	case *StakeDeregistrationCertificate:
		return 0, pparams.KeyDeposit
	case *PoolRegistrationCertificate:
		return pparams.PoolDeposit, 0
	}
	return 0, 0
}

// TotalCertificateDeposits sums the deposits and refunds of a list of
// certificates
func TotalCertificateDeposits(
	certs []Certificate,
	pparams ProtocolParameters,
) (deposit uint64, refund uint64, err error) {
	for _, cert := range certs {
		d, r := CertificateDeposit(cert, pparams)
		if deposit > math.MaxUint64-d || refund > math.MaxUint64-r {
			return 0, 0, invalidValue(
				"Certificate",
				"total deposits overflow",
			)
		}
		deposit += d
		refund += r
	}
	return deposit, refund, nil
}
