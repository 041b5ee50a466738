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
	"encoding/json"
	"fmt"
	"math"
	"math/big"

	"github.com/blinklabs-io/ledgerkit/cbor"
	utxorpc "github.com/utxorpc/go-codegen/utxorpc/v1alpha/cardano"
)

// LinearFee holds the fee parameters. The minimum fee for a transaction of
// N bytes is Constant + Coefficient * N
type LinearFee struct {
	Coefficient uint64
	Constant    uint64
}

// ExUnitPrice is the lovelace price of a unit of memory and a CPU step
type ExUnitPrice struct {
	MemPrice  *cbor.Rat
	StepPrice *cbor.Rat
}

// ProtocolParameters carries the chain parameters that locally computable
// rules depend on. Callers source these from the current epoch
type ProtocolParameters struct {
	LinearFee            LinearFee
	CoinsPerUtxoByte     uint64
	CoinsPerUtxoWord     uint64
	MaxTxSize            uint64
	MaxValueSize         uint64
	KeyDeposit           uint64
	PoolDeposit          uint64
	MinPoolCost          uint64
	ExecutionPrices      ExUnitPrice
	MaxTxExUnits         ExUnits
	CollateralPercentage uint64
	MaxCollateralInputs  uint64
	ProtocolVersion      ProtocolVersion
}

// protocolParametersJson matches the output of
// 'cardano-cli query protocol-parameters'
type protocolParametersJson struct {
	TxFeePerByte        uint64          `json:"txFeePerByte"`
	TxFeeFixed          uint64          `json:"txFeeFixed"`
	UtxoCostPerByte     *uint64         `json:"utxoCostPerByte"`
	UtxoCostPerWord     *uint64         `json:"utxoCostPerWord"`
	MaxTxSize           uint64          `json:"maxTxSize"`
	MaxValueSize        uint64          `json:"maxValueSize"`
	StakeAddressDeposit uint64          `json:"stakeAddressDeposit"`
	StakePoolDeposit    uint64          `json:"stakePoolDeposit"`
	MinPoolCost         uint64          `json:"minPoolCost"`
	ProtocolVersion     ProtocolVersion `json:"protocolVersion"`
	ExecutionUnitPrices *struct {
		PriceMemory json.Number `json:"priceMemory"`
		PriceSteps  json.Number `json:"priceSteps"`
	} `json:"executionUnitPrices"`
	MaxTxExecutionUnits *struct {
		Memory uint64 `json:"memory"`
		Steps  uint64 `json:"steps"`
	} `json:"maxTxExecutionUnits"`
	CollateralPercentage uint64 `json:"collateralPercentage"`
	MaxCollateralInputs  uint64 `json:"maxCollateralInputs"`
}

// NewProtocolParametersFromJSON loads parameters from the JSON emitted by
// cardano-cli. The result is validated before being returned
func NewProtocolParametersFromJSON(jsonData []byte) (ProtocolParameters, error) {
	var tmp protocolParametersJson
	if err := json.Unmarshal(jsonData, &tmp); err != nil {
		return ProtocolParameters{}, fmt.Errorf(
			"decode protocol parameters: %w",
			err,
		)
	}
	ret := ProtocolParameters{
		LinearFee: LinearFee{
			Coefficient: tmp.TxFeePerByte,
			Constant:    tmp.TxFeeFixed,
		},
		MaxTxSize:            tmp.MaxTxSize,
		MaxValueSize:         tmp.MaxValueSize,
		KeyDeposit:           tmp.StakeAddressDeposit,
		PoolDeposit:          tmp.StakePoolDeposit,
		MinPoolCost:          tmp.MinPoolCost,
		CollateralPercentage: tmp.CollateralPercentage,
		MaxCollateralInputs:  tmp.MaxCollateralInputs,
		ProtocolVersion:      tmp.ProtocolVersion,
	}
	if tmp.UtxoCostPerByte != nil {
		ret.CoinsPerUtxoByte = *tmp.UtxoCostPerByte
	}
	if tmp.UtxoCostPerWord != nil {
		ret.CoinsPerUtxoWord = *tmp.UtxoCostPerWord
	}
	if tmp.ExecutionUnitPrices != nil {
		memPrice, err := parsePrice(tmp.ExecutionUnitPrices.PriceMemory)
		if err != nil {
			return ProtocolParameters{}, err
		}
		stepPrice, err := parsePrice(tmp.ExecutionUnitPrices.PriceSteps)
		if err != nil {
			return ProtocolParameters{}, err
		}
		ret.ExecutionPrices = ExUnitPrice{
			MemPrice:  memPrice,
			StepPrice: stepPrice,
		}
	}
	if tmp.MaxTxExecutionUnits != nil {
		ret.MaxTxExUnits = ExUnits{
			Memory: tmp.MaxTxExecutionUnits.Memory,
			Steps:  tmp.MaxTxExecutionUnits.Steps,
		}
	}
	if err := ret.Validate(); err != nil {
		return ProtocolParameters{}, err
	}
	return ret, nil
}

// parsePrice keeps decimal prices exact by parsing the JSON number text
func parsePrice(num json.Number) (*cbor.Rat, error) {
	if num == "" {
		return nil, nil
	}
	r, ok := new(big.Rat).SetString(num.String())
	if !ok || r.Sign() < 0 {
		return nil, invalidValue(
			"ProtocolParameters",
			"invalid execution unit price: %s",
			num,
		)
	}
	return &cbor.Rat{Rat: r}, nil
}

// Validate checks that the parameters are usable for fee and min-UTxO
// computation
func (p ProtocolParameters) Validate() error {
	if p.CoinsPerUtxoByte == 0 && p.CoinsPerUtxoWord == 0 {
		return invalidValue(
			"ProtocolParameters",
			"one of coins per UTxO byte or word must be set",
		)
	}
	if p.ProtocolVersion.UsesCoinsPerUtxoByte() && p.CoinsPerUtxoByte == 0 {
		return invalidValue(
			"ProtocolParameters",
			"coins per UTxO byte is required for protocol version %d",
			p.ProtocolVersion.Major,
		)
	}
	if p.MaxTxSize == 0 {
		return invalidValue("ProtocolParameters", "max tx size must be set")
	}
	if p.MaxTxSize > math.MaxUint32 {
		return invalidValue(
			"ProtocolParameters",
			"max tx size out of range: %d",
			p.MaxTxSize,
		)
	}
	if _, err := CalculateMinFee(int(p.MaxTxSize), p.LinearFee); err != nil {
		return err
	}
	for _, price := range []*cbor.Rat{p.ExecutionPrices.MemPrice, p.ExecutionPrices.StepPrice} {
		if price != nil && price.Rat != nil && price.Sign() < 0 {
			return invalidValue(
				"ProtocolParameters",
				"negative execution unit price",
			)
		}
	}
	return nil
}

// Utxorpc returns the parameters in UTxO RPC form. Prices that do not fit the
// RPC rational type are left unset
func (p ProtocolParameters) Utxorpc() *utxorpc.PParams {
	ret := &utxorpc.PParams{
		CoinsPerUtxoByte:     p.CoinsPerUtxoByte,
		MaxTxSize:            p.MaxTxSize,
		MinFeeCoefficient:    p.LinearFee.Coefficient,
		MinFeeConstant:       p.LinearFee.Constant,
		StakeKeyDeposit:      p.KeyDeposit,
		PoolDeposit:          p.PoolDeposit,
		MinPoolCost:          p.MinPoolCost,
		MaxValueSize:         p.MaxValueSize,
		CollateralPercentage: p.CollateralPercentage,
		MaxCollateralInputs:  p.MaxCollateralInputs,
		ProtocolVersion: &utxorpc.ProtocolVersion{
			// #nosec G115
			Major: uint32(p.ProtocolVersion.Major),
			// #nosec G115
			Minor: uint32(p.ProtocolVersion.Minor),
		},
		MaxExecutionUnitsPerTransaction: &utxorpc.ExUnits{
			Memory: p.MaxTxExUnits.Memory,
			Steps:  p.MaxTxExUnits.Steps,
		},
	}
	memPrice := ratToUtxorpc(p.ExecutionPrices.MemPrice)
	stepPrice := ratToUtxorpc(p.ExecutionPrices.StepPrice)
	if memPrice != nil && stepPrice != nil {
		ret.Prices = &utxorpc.ExPrices{
			Memory: memPrice,
			Steps:  stepPrice,
		}
	}
	return ret
}

func ratToUtxorpc(r *cbor.Rat) *utxorpc.RationalNumber {
	if r == nil || r.Rat == nil {
		return nil
	}
	num := r.Num()
	denom := r.Denom()
	if !num.IsInt64() || num.Int64() > math.MaxInt32 ||
		num.Int64() < math.MinInt32 ||
		!denom.IsInt64() || denom.Int64() > math.MaxUint32 {
		return nil
	}
	return &utxorpc.RationalNumber{
		// #nosec G115
		Numerator: int32(num.Int64()),
		// #nosec G115
		Denominator: uint32(denom.Int64()),
	}
}
