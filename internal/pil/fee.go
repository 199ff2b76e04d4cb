// internal/pil/fee.go
package pil

import "math/big"

// slippageDivisor gives the 10% buffer added when no ceiling is supplied.
const slippageDivisor = 10

// Quote computes the total fee for quantity tokens and the ceiling passed to
// the mint call. A caller-supplied ceiling is used verbatim, even when it is
// below the total; the mint call is left to reject it.
func Quote(perTokenFee *big.Int, quantity int64, callerMaxFee *big.Int) (*FeeQuote, error) {
	if quantity < 1 {
		return nil, &InvalidQuantityError{Quantity: quantity}
	}
	if perTokenFee == nil {
		perTokenFee = new(big.Int)
	}
	if perTokenFee.Sign() < 0 {
		return nil, invalid("per_token_fee", "must not be negative, got %s", perTokenFee.String())
	}

	total := new(big.Int).Mul(perTokenFee, big.NewInt(quantity))

	quote := &FeeQuote{
		PerTokenFee: new(big.Int).Set(perTokenFee),
		Quantity:    quantity,
		Total:       total,
	}

	if callerMaxFee != nil {
		if callerMaxFee.Sign() < 0 {
			return nil, invalid("max_minting_fee", "must not be negative, got %s", callerMaxFee.String())
		}
		quote.Ceiling = new(big.Int).Set(callerMaxFee)
		quote.CallerSupplied = true
		return quote, nil
	}

	buffer := new(big.Int).Quo(total, big.NewInt(slippageDivisor))
	quote.Ceiling = new(big.Int).Add(total, buffer)
	return quote, nil
}
