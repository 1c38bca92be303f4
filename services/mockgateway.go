package services

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"paystream/types"

	"github.com/shopspring/decimal"
)

// MockGateway simulates chain interaction: a fixed latency per call, a
// configurable random failure rate (5% like the demo contract mock),
// and random transaction hashes. Tests pin FailAddresses for
// deterministic failures.
type MockGateway struct {
	Account     string
	Network     string
	Balance     decimal.Decimal
	Latency     time.Duration
	FailureRate float64

	// FailAddresses forces SubmitPayment to fail for these recipients.
	FailAddresses map[string]bool

	mu  sync.Mutex
	rng *rand.Rand
}

func NewMockGateway(account string) *MockGateway {
	return &MockGateway{
		Account:     account,
		Network:     "ethereum",
		Balance:     decimal.NewFromInt(1_000_000),
		Latency:     2 * time.Second,
		FailureRate: 0.05,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (g *MockGateway) GetAccount(ctx context.Context) (string, error) {
	return g.Account, nil
}

func (g *MockGateway) GetNetwork(ctx context.Context) (string, error) {
	return g.Network, nil
}

func (g *MockGateway) GetBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	return g.Balance, nil
}

func (g *MockGateway) SubmitPayment(ctx context.Context, toAddress string, amount decimal.Decimal) (string, error) {
	if g.Latency > 0 {
		select {
		case <-time.After(g.Latency):
		case <-ctx.Done():
			return "", &types.PaymentFailedError{ToAddress: toAddress, Reason: ctx.Err().Error()}
		}
	}

	if g.FailAddresses[toAddress] {
		return "", &types.PaymentFailedError{ToAddress: toAddress, Reason: "blockchain transaction failed"}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.rng.Float64() < g.FailureRate {
		return "", &types.PaymentFailedError{ToAddress: toAddress, Reason: "blockchain transaction failed"}
	}

	hash := make([]byte, 32)
	g.rng.Read(hash)
	return fmt.Sprintf("0x%x", hash), nil
}
