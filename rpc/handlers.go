package rpc

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"synthd/crypto"
)

type depositParams struct {
	Account string `json:"account"`
	Asset   string `json:"asset"`
	Amount  string `json:"amount"`
}

type mintParams struct {
	Account string `json:"account"`
	Amount  string `json:"amount"`
}

type depositAndMintParams struct {
	Account          string `json:"account"`
	Asset            string `json:"asset"`
	CollateralAmount string `json:"collateralAmount"`
	DebtAmount       string `json:"debtAmount"`
}

type liquidateParams struct {
	Liquidator  string `json:"liquidator"`
	Account     string `json:"account"`
	Asset       string `json:"asset"`
	DebtToCover string `json:"debtToCover"`
}

type ackResult struct {
	Status string `json:"status"`
}

var okResult = ackResult{Status: "ok"}

func singleParam(req *RPCRequest, dst interface{}) error {
	if len(req.Params) != 1 {
		return fmt.Errorf("exactly one parameter object expected")
	}
	return json.Unmarshal(req.Params[0], dst)
}

func parseAddress(raw string) (crypto.Address, error) {
	return crypto.DecodeAddress(strings.TrimSpace(raw))
}

func parseAmount(raw string) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("amount required")
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer amount %q", raw)
	}
	return amount, nil
}

func (s *Server) handleDepositCollateral(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params depositParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	account, err := parseAddress(params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid account address", err.Error())
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.engine.DepositCollateral(r.Context(), account, params.Asset, amount); err != nil {
		status, code := rpcErrorFor(err)
		writeError(w, status, req.ID, code, "deposit failed", err.Error())
		return
	}
	writeResult(w, req.ID, okResult)
}

func (s *Server) handleMintDebt(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params mintParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	account, err := parseAddress(params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid account address", err.Error())
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.engine.MintDebt(r.Context(), account, amount); err != nil {
		status, code := rpcErrorFor(err)
		writeError(w, status, req.ID, code, "mint failed", err.Error())
		return
	}
	writeResult(w, req.ID, okResult)
}

func (s *Server) handleRedeemCollateral(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params depositParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	account, err := parseAddress(params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid account address", err.Error())
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.engine.RedeemCollateral(r.Context(), account, params.Asset, amount); err != nil {
		status, code := rpcErrorFor(err)
		writeError(w, status, req.ID, code, "redeem failed", err.Error())
		return
	}
	writeResult(w, req.ID, okResult)
}

func (s *Server) handleBurnDebt(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params mintParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	account, err := parseAddress(params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid account address", err.Error())
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.engine.BurnDebt(r.Context(), account, amount); err != nil {
		status, code := rpcErrorFor(err)
		writeError(w, status, req.ID, code, "burn failed", err.Error())
		return
	}
	writeResult(w, req.ID, okResult)
}

func (s *Server) handleDepositAndMint(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params depositAndMintParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	account, err := parseAddress(params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid account address", err.Error())
		return
	}
	collateralAmount, err := parseAmount(params.CollateralAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	debtAmount, err := parseAmount(params.DebtAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.engine.DepositCollateralAndMintDebt(r.Context(), account, params.Asset, collateralAmount, debtAmount); err != nil {
		status, code := rpcErrorFor(err)
		writeError(w, status, req.ID, code, "deposit and mint failed", err.Error())
		return
	}
	writeResult(w, req.ID, okResult)
}

func (s *Server) handleRedeemForDebt(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params depositAndMintParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	account, err := parseAddress(params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid account address", err.Error())
		return
	}
	collateralAmount, err := parseAmount(params.CollateralAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	debtAmount, err := parseAmount(params.DebtAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.engine.RedeemCollateralForDebt(r.Context(), account, params.Asset, collateralAmount, debtAmount); err != nil {
		status, code := rpcErrorFor(err)
		writeError(w, status, req.ID, code, "redeem for debt failed", err.Error())
		return
	}
	writeResult(w, req.ID, okResult)
}

func (s *Server) handleLiquidate(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params liquidateParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	liquidator, err := parseAddress(params.Liquidator)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid liquidator address", err.Error())
		return
	}
	account, err := parseAddress(params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid account address", err.Error())
		return
	}
	debtToCover, err := parseAmount(params.DebtToCover)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.engine.Liquidate(r.Context(), liquidator, params.Asset, account, debtToCover); err != nil {
		status, code := rpcErrorFor(err)
		writeError(w, status, req.ID, code, "liquidation failed", err.Error())
		return
	}
	writeResult(w, req.ID, okResult)
}
