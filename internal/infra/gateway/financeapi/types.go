package financeapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/kislikjeka/fintrack/internal/platform/transaction"
)

// Wire values of the transaction type field
const (
	WireDebit    = "Debit"
	WireCredit   = "Credit"
	WireTransfer = "Transferred"
)

// TransactionDTO is a transaction as the finance API sends and receives it
type TransactionDTO struct {
	ID          FlexibleID `json:"id,omitempty"`
	Date        string     `json:"date"`
	Description string     `json:"description"`
	Name        string     `json:"name"`
	Amount      float64    `json:"amount"`
	Type        string     `json:"type"`
	Category    string     `json:"category"`
	Account     string     `json:"account"`
	ToAccount   string     `json:"to_account,omitempty"`
	PaidBy      string     `json:"paid_by"`
	Status      string     `json:"status"`
}

// TransactionsResponse is the body of GET /transactions
type TransactionsResponse struct {
	Transactions []TransactionDTO `json:"transactions"`
}

// BalancesResponse is the body of GET /balances
type BalancesResponse struct {
	Balances map[string]float64 `json:"balances"`
}

// SpendingResponse is the body of GET /spending/category
type SpendingResponse struct {
	Spending map[string]float64 `json:"spending"`
}

// ChartResponse is the body of both chart endpoints; Chart is base64 or null
type ChartResponse struct {
	Chart *string `json:"chart"`
}

// FlexibleID accepts an id sent as either a JSON string or a number
type FlexibleID string

// UnmarshalJSON implements json.Unmarshaler
func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*id = FlexibleID(n.String())
	return nil
}

// WireType maps a direction to its wire value
func WireType(d transaction.Direction) string {
	switch d {
	case transaction.DirectionCredit:
		return WireCredit
	case transaction.DirectionTransfer:
		return WireTransfer
	}
	return WireDebit
}

// ToDTO converts a transaction to its wire form; dates go out as YYYY-MM-DD
func ToDTO(tx *transaction.Transaction) TransactionDTO {
	return TransactionDTO{
		Date:        tx.OccurredOn.String(),
		Description: tx.Description,
		Name:        tx.Label,
		Amount:      tx.Amount,
		Type:        WireType(tx.Direction),
		Category:    tx.Category,
		Account:     tx.Account,
		ToAccount:   tx.ToAccount,
		PaidBy:      tx.PaidBy,
		Status:      tx.Status,
	}
}

// idSpace scopes IDs derived from server ids that are not UUIDs
var idSpace = uuid.MustParse("0c1d7f4a-6a0e-4b8e-9f57-2b8d3e1f5a90")

// FromDTO converts a wire transaction. Server ids that are not UUIDs are mapped
// to stable UUIDs; records without an id get one derived from their content.
func FromDTO(dto TransactionDTO) (*transaction.Transaction, error) {
	date, err := transaction.ParseDate(dto.Date)
	if err != nil {
		return nil, err
	}
	dir, err := transaction.ParseDirection(dto.Type)
	if err != nil {
		return nil, err
	}

	tx := &transaction.Transaction{
		ID:          dto.stableID(),
		OccurredOn:  date,
		Description: dto.Description,
		Label:       dto.Name,
		Amount:      dto.Amount,
		Direction:   dir,
		Category:    dto.Category,
		Account:     dto.Account,
		PaidBy:      dto.PaidBy,
		Status:      dto.Status,
	}
	if dir == transaction.DirectionTransfer {
		tx.ToAccount = dto.ToAccount
	}

	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return tx, nil
}

func (dto TransactionDTO) stableID() uuid.UUID {
	if dto.ID != "" {
		if id, err := uuid.Parse(string(dto.ID)); err == nil {
			return id
		}
		return uuid.NewSHA1(idSpace, []byte("id:"+string(dto.ID)))
	}
	key := dto.Date + "|" + dto.Name + "|" + dto.Account + "|" + dto.Type + "|" +
		strconv.FormatFloat(dto.Amount, 'f', -1, 64)
	return uuid.NewSHA1(idSpace, []byte("content:"+key))
}
