package ledger

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"EduPaySettlement/internal/address"
)

const (
	defaultMaxGasAmount = 200_000
	defaultGasUnitPrice = 100
	txExpirySecs        = 600
	waitPollInterval    = time.Second
	waitMaxPolls        = 30
)

// RPCClient talks to a single fullnode over its REST API.
type RPCClient struct {
	baseURL  string
	contract address.Address
	client   *http.Client
}

var _ Client = (*RPCClient)(nil)

func NewRPCClient(baseURL string, contract address.Address) *RPCClient {
	return &RPCClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		contract: contract,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *RPCClient) Balance(ctx context.Context, addr address.Address) (uint64, error) {
	vals, err := c.View(ctx, CoinBalance{Account: addr})
	if err != nil {
		if IsNotFound(err) {
			// Unfunded accounts have no coin store yet.
			return 0, nil
		}
		return 0, err
	}
	if len(vals) == 0 {
		return 0, &Error{Kind: ErrNodeRejected, Msg: "empty balance response"}
	}
	var s string
	if err := json.Unmarshal(vals[0], &s); err != nil {
		return 0, &Error{Kind: ErrNodeRejected, Msg: "malformed balance value", Err: err}
	}
	bal, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, &Error{Kind: ErrNodeRejected, Msg: "malformed balance value", Err: err}
	}
	return bal, nil
}

func (c *RPCClient) View(ctx context.Context, call Call) ([]json.RawMessage, error) {
	var out []json.RawMessage
	if err := c.postJSON(ctx, "/view", call.Payload(c.contract), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RPCClient) BuildTransaction(ctx context.Context, sender address.Address, call Call) (*TxDraft, error) {
	var acct accountResponse
	if err := c.getJSON(ctx, "/accounts/"+sender.String(), &acct); err != nil {
		return nil, err
	}
	seq, err := strconv.ParseUint(acct.SequenceNumber, 10, 64)
	if err != nil {
		return nil, &Error{Kind: ErrNodeRejected, Msg: "malformed sequence number", Err: err}
	}

	draft := &TxDraft{
		Sender:                  sender,
		SequenceNumber:          seq,
		MaxGasAmount:            defaultMaxGasAmount,
		GasUnitPrice:            defaultGasUnitPrice,
		ExpirationTimestampSecs: uint64(time.Now().Unix()) + txExpirySecs,
		Payload:                 call.Payload(c.contract),
	}

	var encoded string
	if err := c.postJSON(ctx, "/transactions/encode_submission", encodeRequest(draft), &encoded); err != nil {
		return nil, err
	}
	msg, err := hex.DecodeString(strings.TrimPrefix(encoded, "0x"))
	if err != nil {
		return nil, &Error{Kind: ErrNodeRejected, Msg: "malformed signing message", Err: err}
	}
	draft.SigningMessage = msg
	return draft, nil
}

func (c *RPCClient) SignAndSubmit(ctx context.Context, signer Signer, draft *TxDraft) (string, error) {
	sig := signer.Sign(draft.SigningMessage)
	req := encodeRequest(draft)
	req.Signature = &txSignature{
		Type:      "ed25519_signature",
		PublicKey: "0x" + hex.EncodeToString(signer.PublicKey()),
		Signature: "0x" + hex.EncodeToString(sig),
	}

	var resp submitResponse
	if err := c.postJSON(ctx, "/transactions", req, &resp); err != nil {
		return "", err
	}
	if resp.Hash == "" {
		return "", &Error{Kind: ErrNodeRejected, Msg: "submit returned no hash"}
	}
	return resp.Hash, nil
}

func (c *RPCClient) WaitForTransaction(ctx context.Context, hash string) (*TxOutcome, error) {
	for i := 0; i < waitMaxPolls; i++ {
		var tx txByHashResponse
		err := c.getJSON(ctx, "/transactions/by_hash/"+hash, &tx)
		switch {
		case err != nil && IsNotFound(err):
			// Not yet in the mempool index; keep polling.
		case err != nil:
			return nil, err
		case tx.Type != "pending_transaction":
			return &TxOutcome{Hash: hash, Success: tx.Success, VMStatus: tx.VMStatus}, nil
		}

		select {
		case <-ctx.Done():
			return nil, &Error{Kind: ErrNetwork, Msg: "wait cancelled", Err: ctx.Err()}
		case <-time.After(waitPollInterval):
		}
	}
	return nil, &Error{Kind: ErrNetwork, Msg: "transaction still pending: " + hash}
}

func (c *RPCClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &Error{Kind: ErrNetwork, Err: err}
	}
	return c.do(req, out)
}

func (c *RPCClient) postJSON(ctx context.Context, path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return &Error{Kind: ErrInvalidArgument, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return &Error{Kind: ErrNetwork, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *RPCClient) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return &Error{Kind: ErrNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classifyAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: ErrNodeRejected, Msg: "malformed node response", Err: err}
	}
	return nil
}

func classifyAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	var apiErr struct {
		Message   string `json:"message"`
		ErrorCode string `json:"error_code"`
	}
	_ = json.Unmarshal(body, &apiErr)
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("http status %d", resp.StatusCode)
	}

	kind := ErrNodeRejected
	switch {
	case strings.Contains(apiErr.Message, "INSUFFICIENT_BALANCE"),
		strings.Contains(apiErr.ErrorCode, "insufficient"):
		kind = ErrInsufficientBalance
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusNotFound:
		kind = ErrInvalidArgument
	case resp.StatusCode >= 500:
		kind = ErrNetwork
	}
	return &Error{Kind: kind, Code: apiErr.ErrorCode, Msg: apiErr.Message}
}

// request/response shapes; u64 fields travel as decimal strings

type accountResponse struct {
	SequenceNumber    string `json:"sequence_number"`
	AuthenticationKey string `json:"authentication_key"`
}

type submitRequest struct {
	Sender                  string       `json:"sender"`
	SequenceNumber          string       `json:"sequence_number"`
	MaxGasAmount            string       `json:"max_gas_amount"`
	GasUnitPrice            string       `json:"gas_unit_price"`
	ExpirationTimestampSecs string       `json:"expiration_timestamp_secs"`
	Payload                 txPayload    `json:"payload"`
	Signature               *txSignature `json:"signature,omitempty"`
}

type txPayload struct {
	Type string `json:"type"`
	EntryFunction
}

type txSignature struct {
	Type      string `json:"type"`
	PublicKey string `json:"public_key"`
	Signature string `json:"signature"`
}

type submitResponse struct {
	Hash string `json:"hash"`
}

type txByHashResponse struct {
	Type     string `json:"type"`
	Hash     string `json:"hash"`
	Success  bool   `json:"success"`
	VMStatus string `json:"vm_status"`
}

func encodeRequest(draft *TxDraft) submitRequest {
	return submitRequest{
		Sender:                  draft.Sender.String(),
		SequenceNumber:          strconv.FormatUint(draft.SequenceNumber, 10),
		MaxGasAmount:            strconv.FormatUint(draft.MaxGasAmount, 10),
		GasUnitPrice:            strconv.FormatUint(draft.GasUnitPrice, 10),
		ExpirationTimestampSecs: strconv.FormatUint(draft.ExpirationTimestampSecs, 10),
		Payload: txPayload{
			Type:          "entry_function_payload",
			EntryFunction: draft.Payload,
		},
	}
}
