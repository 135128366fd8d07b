package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"EduPaySettlement/internal/address"
)

// MultiClient fans Client calls over several fullnode endpoints. It sticks
// to one endpoint until it accumulates failThreshold consecutive failures,
// then rotates; a single call also tries the remaining endpoints before
// giving up.
type MultiClient struct {
	clients       []*RPCClient
	index         int
	failCount     int
	failThreshold int
	mu            sync.Mutex
}

var _ Client = (*MultiClient)(nil)

func NewMultiClient(endpoints []string, contract address.Address, failThreshold int) (*MultiClient, error) {
	list := sanitizeEndpoints(endpoints)
	if len(list) == 0 {
		return nil, errors.New("fullnode endpoints is empty")
	}
	if failThreshold <= 0 {
		failThreshold = 3
	}
	clients := make([]*RPCClient, 0, len(list))
	for _, ep := range list {
		clients = append(clients, NewRPCClient(ep, contract))
	}
	return &MultiClient{clients: clients, failThreshold: failThreshold}, nil
}

func (m *MultiClient) BaseURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clients[m.index].baseURL
}

func (m *MultiClient) Balance(ctx context.Context, addr address.Address) (uint64, error) {
	return failover(m, func(c *RPCClient) (uint64, error) {
		return c.Balance(ctx, addr)
	})
}

func (m *MultiClient) View(ctx context.Context, call Call) ([]json.RawMessage, error) {
	return failover(m, func(c *RPCClient) ([]json.RawMessage, error) {
		return c.View(ctx, call)
	})
}

func (m *MultiClient) BuildTransaction(ctx context.Context, sender address.Address, call Call) (*TxDraft, error) {
	return failover(m, func(c *RPCClient) (*TxDraft, error) {
		return c.BuildTransaction(ctx, sender, call)
	})
}

func (m *MultiClient) SignAndSubmit(ctx context.Context, signer Signer, draft *TxDraft) (string, error) {
	return failover(m, func(c *RPCClient) (string, error) {
		return c.SignAndSubmit(ctx, signer, draft)
	})
}

func (m *MultiClient) WaitForTransaction(ctx context.Context, hash string) (*TxOutcome, error) {
	return failover(m, func(c *RPCClient) (*TxOutcome, error) {
		return c.WaitForTransaction(ctx, hash)
	})
}

// failover runs fn against the current endpoint and walks the ring on
// failure. Node-side rejections (bad arguments, VM aborts) are not endpoint
// faults and do not rotate.
func failover[T any](m *MultiClient, fn func(*RPCClient) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempts := 0; attempts < len(m.clients); attempts++ {
		client, idx := m.currentClient()
		out, err := fn(client)
		if err == nil {
			m.resetFailures(idx)
			return out, nil
		}
		if kind := KindOf(err); kind == ErrInvalidArgument || kind == ErrInsufficientBalance {
			return zero, err
		}
		lastErr = err
		if m.noteFailure(idx) || len(m.clients) > 1 {
			m.rotate()
		}
	}
	return zero, lastErr
}

func (m *MultiClient) currentClient() (*RPCClient, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clients[m.index], m.index
}

func (m *MultiClient) resetFailures(idx int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index == idx {
		m.failCount = 0
	}
}

// noteFailure records a failure on idx and reports whether the threshold
// was crossed.
func (m *MultiClient) noteFailure(idx int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index == idx {
		m.failCount++
	}
	return m.failCount >= m.failThreshold
}

func (m *MultiClient) rotate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.index = (m.index + 1) % len(m.clients)
	m.failCount = 0
}

func sanitizeEndpoints(endpoints []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(endpoints))
	for _, ep := range endpoints {
		ep = strings.TrimSpace(ep)
		if ep == "" {
			continue
		}
		ep = strings.TrimRight(ep, "/")
		if _, ok := seen[ep]; ok {
			continue
		}
		seen[ep] = struct{}{}
		out = append(out, ep)
	}
	return out
}
