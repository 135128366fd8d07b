package ledger

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"EduPaySettlement/internal/address"
)

// FaucetClient requests test-network token grants. It has no mainnet
// equivalent; the funding guard that drives it is an opportunistic pre-step
// only.
type FaucetClient struct {
	baseURL string
	client  *http.Client
}

func NewFaucetClient(baseURL string) *FaucetClient {
	return &FaucetClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Mint asks the faucet to credit addr with the given octas.
func (f *FaucetClient) Mint(ctx context.Context, addr address.Address, octas uint64) error {
	values := url.Values{}
	values.Set("address", addr.String())
	values.Set("amount", strconv.FormatUint(octas, 10))
	endpoint := f.baseURL + "/mint?" + values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return &Error{Kind: ErrNetwork, Err: err}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return &Error{Kind: ErrNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = fmt.Sprintf("http status %d", resp.StatusCode)
		}
		return &Error{Kind: ErrNodeRejected, Msg: "faucet: " + msg}
	}
	return nil
}
