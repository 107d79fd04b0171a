// Package instruction defines the aggregator's request wire format: one
// discriminant tag byte followed by packed little-endian u64 fields.
package instruction

import (
	"encoding/binary"
	"errors"
)

// ErrInvalidInstruction is returned for an unrecognized tag or a buffer too
// short to hold every required field.
var ErrInvalidInstruction = errors.New("instruction: invalid instruction")

// Instruction tags.
const (
	TagSwap            byte = 0
	TagRoute           byte = 1
	TagAddLiquidity    byte = 2
	TagRemoveLiquidity byte = 3
)

// Instruction is one decoded request. Exactly one variant field is non-nil;
// a decoded instruction is immutable and consumed once.
type Instruction struct {
	Swap            *Swap
	Route           *Route
	AddLiquidity    *AddLiquidity
	RemoveLiquidity *RemoveLiquidity
}

type Swap struct {
	Amount uint64
	Limit  uint64
}

type Route struct {
	Amount      uint64
	FirstLimit  uint64
	SecondLimit uint64
}

type AddLiquidity struct {
	DeltaS uint64
	DeltaA uint64
	DeltaB uint64
}

type RemoveLiquidity struct {
	LPT uint64
}

// Unpack decodes a raw request buffer into a typed instruction.
func Unpack(data []byte) (Instruction, error) {
	if len(data) == 0 {
		return Instruction{}, ErrInvalidInstruction
	}
	tag, rest := data[0], data[1:]

	switch tag {
	case TagSwap:
		fields, err := readU64s(rest, 2)
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Swap: &Swap{Amount: fields[0], Limit: fields[1]}}, nil

	case TagRoute:
		fields, err := readU64s(rest, 3)
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Route: &Route{
			Amount:      fields[0],
			FirstLimit:  fields[1],
			SecondLimit: fields[2],
		}}, nil

	case TagAddLiquidity:
		fields, err := readU64s(rest, 3)
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{AddLiquidity: &AddLiquidity{
			DeltaS: fields[0],
			DeltaA: fields[1],
			DeltaB: fields[2],
		}}, nil

	case TagRemoveLiquidity:
		fields, err := readU64s(rest, 1)
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{RemoveLiquidity: &RemoveLiquidity{LPT: fields[0]}}, nil
	}

	return Instruction{}, ErrInvalidInstruction
}

// Pack encodes a typed instruction back into its wire form.
func (ix Instruction) Pack() ([]byte, error) {
	switch {
	case ix.Swap != nil:
		return packU64s(TagSwap, ix.Swap.Amount, ix.Swap.Limit), nil
	case ix.Route != nil:
		return packU64s(TagRoute, ix.Route.Amount, ix.Route.FirstLimit, ix.Route.SecondLimit), nil
	case ix.AddLiquidity != nil:
		return packU64s(TagAddLiquidity, ix.AddLiquidity.DeltaS, ix.AddLiquidity.DeltaA, ix.AddLiquidity.DeltaB), nil
	case ix.RemoveLiquidity != nil:
		return packU64s(TagRemoveLiquidity, ix.RemoveLiquidity.LPT), nil
	}
	return nil, ErrInvalidInstruction
}

func readU64s(data []byte, n int) ([]uint64, error) {
	if len(data) < n*8 {
		return nil, ErrInvalidInstruction
	}
	out := make([]uint64, n)
	for i := 0; i < n; i++ {
		out[i] = binary.LittleEndian.Uint64(data[i*8 : i*8+8])
	}
	return out, nil
}

func packU64s(tag byte, fields ...uint64) []byte {
	data := make([]byte, 1+8*len(fields))
	data[0] = tag
	for i, f := range fields {
		binary.LittleEndian.PutUint64(data[1+i*8:], f)
	}
	return data
}
