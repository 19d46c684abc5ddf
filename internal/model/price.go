package model

import (
	"encoding/json"
	"fmt"
)

// PriceKind tags which variant a Price holds.
type PriceKind int

const (
	PriceUndetermined PriceKind = iota + 1
	PriceFree
	PriceFixed
	PriceMultiTier
)

// Price is the ticket price tier in yen. Amount is only meaningful for
// PriceFixed (the price) and PriceMultiTier (the cheapest tier).
type Price struct {
	Kind   PriceKind
	Amount int
}

func Undetermined() Price { return Price{Kind: PriceUndetermined} }

func Free() Price { return Price{Kind: PriceFree} }

func Fixed(amount int) Price { return Price{Kind: PriceFixed, Amount: amount} }

func MultiTier(minimum int) Price { return Price{Kind: PriceMultiTier, Amount: minimum} }

func (p Price) String() string {
	switch p.Kind {
	case PriceUndetermined:
		return "Undetermined"
	case PriceFree:
		return "Free"
	case PriceFixed:
		return fmt.Sprintf("Fixed(%d)", p.Amount)
	case PriceMultiTier:
		return fmt.Sprintf("MultiTier(%d)", p.Amount)
	default:
		return fmt.Sprintf("Price(%d)", int(p.Kind))
	}
}

type fixedJSON struct {
	Amount int `json:"amount"`
}

type multiTierJSON struct {
	MinimumAmount int `json:"minimum_amount"`
}

// MarshalJSON encodes unit variants as bare strings and data variants as
// single-key objects:
//
//	"Undetermined" | "Free" | {"Fixed":{"amount":3500}} | {"MultiTier":{"minimum_amount":2000}}
func (p Price) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case PriceUndetermined:
		return json.Marshal("Undetermined")
	case PriceFree:
		return json.Marshal("Free")
	case PriceFixed:
		return json.Marshal(map[string]fixedJSON{"Fixed": {Amount: p.Amount}})
	case PriceMultiTier:
		return json.Marshal(map[string]multiTierJSON{"MultiTier": {MinimumAmount: p.Amount}})
	default:
		return nil, fmt.Errorf("model: unknown price kind %d", int(p.Kind))
	}
}

func (p *Price) UnmarshalJSON(b []byte) error {
	var tag string
	if err := json.Unmarshal(b, &tag); err == nil {
		switch tag {
		case "Undetermined":
			*p = Undetermined()
		case "Free":
			*p = Free()
		default:
			return fmt.Errorf("model: unknown price %q", tag)
		}
		return nil
	}

	var obj struct {
		Fixed     *fixedJSON     `json:"Fixed"`
		MultiTier *multiTierJSON `json:"MultiTier"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	switch {
	case obj.Fixed != nil && obj.MultiTier == nil:
		*p = Fixed(obj.Fixed.Amount)
	case obj.MultiTier != nil && obj.Fixed == nil:
		*p = MultiTier(obj.MultiTier.MinimumAmount)
	default:
		return fmt.Errorf("model: unrecognized price %s", string(b))
	}
	return nil
}
