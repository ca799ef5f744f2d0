package rpc

import (
	"errors"
	"net/http"

	"synthd/engine"
)

// rpcErrorFor maps engine failures onto JSON-RPC error codes. Validation
// failures surface as invalid-params so clients can tell a rejected request
// from an engine fault.
func rpcErrorFor(err error) (int, int) {
	switch {
	case errors.Is(err, engine.ErrAmountMustBePositive),
		errors.Is(err, engine.ErrAssetNotApproved),
		errors.Is(err, engine.ErrInvalidAccount),
		errors.Is(err, engine.ErrArithmeticUnderflow):
		return http.StatusBadRequest, codeInvalidParams
	case errors.Is(err, engine.ErrHealthFactorBroken):
		return http.StatusConflict, codeHealthFactor
	case errors.Is(err, engine.ErrHealthFactorOK),
		errors.Is(err, engine.ErrHealthFactorNotImproved):
		return http.StatusConflict, codeLiquidation
	default:
		return http.StatusInternalServerError, codeServerError
	}
}
