package rpc

import (
	"net/http"
)

type accountParams struct {
	Account string `json:"account"`
}

type accountAssetParams struct {
	Account string `json:"account"`
	Asset   string `json:"asset"`
}

type usdValueParams struct {
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
}

type assetParams struct {
	Asset string `json:"asset"`
}

type collateralAssetsResult struct {
	Assets []string `json:"assets"`
}

type priceFeedResult struct {
	Asset string `json:"asset"`
	Price string `json:"price"`
}

type debtTokenResult struct {
	Symbol string `json:"symbol"`
}

type amountResult struct {
	Amount string `json:"amount"`
}

type positionResult struct {
	Account      string            `json:"account"`
	Collateral   map[string]string `json:"collateral"`
	Debt         string            `json:"debt"`
	HealthFactor string            `json:"healthFactor"`
}

func (s *Server) handleGetCollateralAssets(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	writeResult(w, req.ID, collateralAssetsResult{Assets: s.engine.CollateralAssets()})
}

func (s *Server) handleGetDebtToken(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	writeResult(w, req.ID, debtTokenResult{Symbol: s.engine.DebtToken().Symbol()})
}

func (s *Server) handleGetPriceFeed(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params assetParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	feed, err := s.engine.PriceFeed(params.Asset)
	if err != nil {
		status, code := rpcErrorFor(err)
		writeError(w, status, req.ID, code, "price feed lookup failed", err.Error())
		return
	}
	price, err := feed.LatestPrice(r.Context())
	if err != nil {
		status, code := rpcErrorFor(err)
		writeError(w, status, req.ID, code, "price feed read failed", err.Error())
		return
	}
	writeResult(w, req.ID, priceFeedResult{Asset: params.Asset, Price: price.String()})
}

func (s *Server) handleGetCollateral(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params accountAssetParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	account, err := parseAddress(params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid account address", err.Error())
		return
	}
	balance, err := s.engine.CollateralOf(account, params.Asset)
	if err != nil {
		status, code := rpcErrorFor(err)
		writeError(w, status, req.ID, code, "collateral lookup failed", err.Error())
		return
	}
	writeResult(w, req.ID, amountResult{Amount: balance.String()})
}

func (s *Server) handleGetDebt(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params accountParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	account, err := parseAddress(params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid account address", err.Error())
		return
	}
	debt, err := s.engine.DebtOf(account)
	if err != nil {
		status, code := rpcErrorFor(err)
		writeError(w, status, req.ID, code, "debt lookup failed", err.Error())
		return
	}
	writeResult(w, req.ID, amountResult{Amount: debt.String()})
}

func (s *Server) handleGetAccountCollateralValue(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params accountParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	account, err := parseAddress(params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid account address", err.Error())
		return
	}
	value, err := s.engine.AccountCollateralValue(r.Context(), account)
	if err != nil {
		status, code := rpcErrorFor(err)
		writeError(w, status, req.ID, code, "collateral value lookup failed", err.Error())
		return
	}
	writeResult(w, req.ID, amountResult{Amount: value.String()})
}

func (s *Server) handleGetHealthFactor(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params accountParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	account, err := parseAddress(params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid account address", err.Error())
		return
	}
	ratio, err := s.engine.HealthFactor(r.Context(), account)
	if err != nil {
		status, code := rpcErrorFor(err)
		writeError(w, status, req.ID, code, "health factor lookup failed", err.Error())
		return
	}
	writeResult(w, req.ID, amountResult{Amount: ratio.String()})
}

func (s *Server) handleGetUsdValue(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params usdValueParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	value, err := s.engine.UsdValue(r.Context(), params.Asset, amount)
	if err != nil {
		status, code := rpcErrorFor(err)
		writeError(w, status, req.ID, code, "usd value lookup failed", err.Error())
		return
	}
	writeResult(w, req.ID, amountResult{Amount: value.String()})
}

func (s *Server) handleGetPosition(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params accountParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	account, err := parseAddress(params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid account address", err.Error())
		return
	}
	// One engine call keeps the snapshot consistent under concurrent writes.
	view, err := s.engine.PositionOf(r.Context(), account)
	if err != nil {
		status, code := rpcErrorFor(err)
		writeError(w, status, req.ID, code, "position lookup failed", err.Error())
		return
	}
	collateral := make(map[string]string, len(view.Collateral))
	for asset, balance := range view.Collateral {
		collateral[asset] = balance.String()
	}
	writeResult(w, req.ID, positionResult{
		Account:      view.Account.String(),
		Collateral:   collateral,
		Debt:         view.Debt.String(),
		HealthFactor: view.HealthFactor.String(),
	})
}
