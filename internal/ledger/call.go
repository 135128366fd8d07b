package ledger

import (
	"strconv"

	"EduPaySettlement/internal/address"
)

// EntryFunction is the wire shape of both entry-function payloads and view
// requests: a module::name identifier, generic type arguments, and
// positional arguments with u64 values rendered as decimal strings.
type EntryFunction struct {
	Function      string   `json:"function"`
	TypeArguments []string `json:"type_arguments"`
	Arguments     []any    `json:"arguments"`
}

// Call is a typed ledger call. Argument encoding happens in exactly one
// place per variant, so the cascade never assembles raw argument lists.
// The contract address is resolved by the client at encode time.
type Call interface {
	Payload(contract address.Address) EntryFunction
}

// PurchaseSubscription records a plan purchase on ledger. It carries only
// identifiers; value movement is separate from the purchase call.
type PurchaseSubscription struct {
	PlanID        string
	CorrelationID string
}

func (c PurchaseSubscription) Payload(contract address.Address) EntryFunction {
	return EntryFunction{
		Function:      contract.String() + "::subscription::purchase_subscription",
		TypeArguments: []string{},
		Arguments:     []any{c.PlanID, c.CorrelationID},
	}
}

// TransferCoins moves octas between accounts: the value leg of a
// settlement. The purchase call carries identifiers only.
type TransferCoins struct {
	Recipient address.Address
	Octas     uint64
}

func (c TransferCoins) Payload(address.Address) EntryFunction {
	return EntryFunction{
		Function:      "0x1::aptos_account::transfer",
		TypeArguments: []string{},
		Arguments:     []any{c.Recipient.String(), strconv.FormatUint(c.Octas, 10)},
	}
}

// GetSubscription reads an account's subscription record for a plan.
type GetSubscription struct {
	Account address.Address
	PlanID  string
}

func (c GetSubscription) Payload(contract address.Address) EntryFunction {
	return EntryFunction{
		Function:      contract.String() + "::subscription::get_subscription",
		TypeArguments: []string{},
		Arguments:     []any{c.Account.String(), c.PlanID},
	}
}

// CoinBalance reads an account's coin balance in octas.
type CoinBalance struct {
	Account address.Address
}

func (c CoinBalance) Payload(address.Address) EntryFunction {
	return EntryFunction{
		Function:      "0x1::coin::balance",
		TypeArguments: []string{"0x1::aptos_coin::AptosCoin"},
		Arguments:     []any{c.Account.String()},
	}
}
