// Package testutil produces real BN254 Groth16 material and fake key hosts for tests.
package testutil

import (
	"math/big"

	"github.com/consensys/gnark/frontend"
)

// MembershipCircuit is a toy stand-in for the production circuit with the same
// public layout: hash limbs followed by slots key groups. It proves knowledge
// of a key equal to one of the slots and binds the message limbs.
type MembershipCircuit struct {
	Signals []frontend.Variable `gnark:",public"`
	Message []frontend.Variable `gnark:",secret"`
	Key     []frontend.Variable `gnark:",secret"`

	HashLimbs int `gnark:"-"`
	KeyLimbs  int `gnark:"-"`
	Slots     int `gnark:"-"`
}

func NewMembershipCircuit(hashLimbs, keyLimbs, slots int) *MembershipCircuit {
	return &MembershipCircuit{
		Signals:   make([]frontend.Variable, hashLimbs+keyLimbs*slots),
		Message:   make([]frontend.Variable, hashLimbs),
		Key:       make([]frontend.Variable, keyLimbs),
		HashLimbs: hashLimbs,
		KeyLimbs:  keyLimbs,
		Slots:     slots,
	}
}

func (c *MembershipCircuit) Define(api frontend.API) error {
	for i := 0; i < c.HashLimbs; i++ {
		api.AssertIsEqual(c.Message[i], c.Signals[i])
	}

	var product frontend.Variable = 1
	for slot := 0; slot < c.Slots; slot++ {
		var diff frontend.Variable = 0
		for j := 0; j < c.KeyLimbs; j++ {
			signal := c.Signals[c.HashLimbs+slot*c.KeyLimbs+j]
			// fixed weights; soundness is not the point of this circuit
			weight := new(big.Int).Lsh(big.NewInt(1), uint(j))
			diff = api.Add(diff, api.Mul(api.Sub(c.Key[j], signal), weight))
		}
		product = api.Mul(product, diff)
	}
	api.AssertIsEqual(product, 0)

	return nil
}
