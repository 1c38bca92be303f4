package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"paystream/types"

	"github.com/shopspring/decimal"
)

// WalletGateway abstracts the connected account, network, balance and
// payment submission. Production wires ChainGateway; tests and demo
// mode wire MockGateway.
type WalletGateway interface {
	GetAccount(ctx context.Context) (string, error)
	GetNetwork(ctx context.Context) (string, error)
	GetBalance(ctx context.Context, address string) (decimal.Decimal, error)
	// SubmitPayment transfers amount to the given address and returns
	// the transaction hash. Chain-level rejections surface as
	// *types.PaymentFailedError.
	SubmitPayment(ctx context.Context, toAddress string, amount decimal.Decimal) (string, error)
}

// ChainGateway talks RPC to a stablecoin payment node.
type ChainGateway struct {
	client   *http.Client
	endpoint string
	network  string
	account  string
}

func NewChainGateway(endpoint, network, account string) *ChainGateway {
	return &ChainGateway{
		client:   &http.Client{},
		endpoint: endpoint,
		network:  network,
		account:  account,
	}
}

func (g *ChainGateway) GetAccount(ctx context.Context) (string, error) {
	return g.account, nil
}

func (g *ChainGateway) GetNetwork(ctx context.Context) (string, error) {
	return g.network, nil
}

func (g *ChainGateway) GetBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	result, err := g.call(ctx, "get_balance", map[string]interface{}{
		"address": address,
	})
	if err != nil {
		return decimal.Zero, err
	}

	var balance struct {
		Balance decimal.Decimal `json:"balance"`
	}
	if err := json.Unmarshal(result, &balance); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode balance: %w", err)
	}
	return balance.Balance, nil
}

func (g *ChainGateway) SubmitPayment(ctx context.Context, toAddress string, amount decimal.Decimal) (string, error) {
	result, err := g.call(ctx, "transfer", map[string]interface{}{
		"from":   g.account,
		"to":     toAddress,
		"amount": amount,
	})
	if err != nil {
		return "", &types.PaymentFailedError{ToAddress: toAddress, Reason: err.Error()}
	}

	var receipt struct {
		TransactionHash string `json:"transaction_hash"`
	}
	if err := json.Unmarshal(result, &receipt); err != nil {
		return "", &types.PaymentFailedError{ToAddress: toAddress, Reason: err.Error()}
	}
	if receipt.TransactionHash == "" {
		return "", &types.PaymentFailedError{ToAddress: toAddress, Reason: "no transaction hash returned"}
	}
	return receipt.TransactionHash, nil
}

func (g *ChainGateway) call(ctx context.Context, method string, args map[string]interface{}) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	payload := map[string]interface{}{
		"method": method,
		"args":   args,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/%s/call", g.endpoint, g.network)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chain call failed with status: %d", resp.StatusCode)
	}

	var rpcResp struct {
		Result json.RawMessage `json:"result"`
		Error  string          `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if rpcResp.Error != "" {
		return nil, fmt.Errorf("chain call rejected: %s", rpcResp.Error)
	}
	return rpcResp.Result, nil
}
