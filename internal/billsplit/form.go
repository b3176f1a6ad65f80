package billsplit

import (
	"math"

	"github.com/susu3304/splitbot/internal/settle"
)

// Entry is one participant row as typed into a form.
type Entry struct {
	Name       string
	AmountPaid string
}

// Form is a complete, stateless settlement request.
type Form struct {
	Bill    string
	Entries []Entry
}

type Result struct {
	Bill         float64              `json:"bill"`
	Share        float64              `json:"share"`
	Participants []settle.Participant `json:"participants"`
	Transactions []settle.Transaction `json:"transactions"`
	// Residual holds balances nobody could settle, e.g. a lone participant
	// who did not pay the whole bill.
	Residual []settle.Balance `json:"residual,omitempty"`
	// SettlementID is set once the run has been written to history.
	SettlementID int64 `json:"settlement_id,omitempty"`
}

// Lines renders the transactions one per line.
func (r *Result) Lines() []string {
	lines := make([]string, 0, len(r.Transactions))
	for _, tx := range r.Transactions {
		lines = append(lines, FormatTransaction(tx))
	}
	return lines
}

// Rounded returns the transactions with amounts rounded to cents for display.
func (r *Result) Rounded() []settle.Transaction {
	out := make([]settle.Transaction, 0, len(r.Transactions))
	for _, tx := range r.Transactions {
		tx.Amount = settle.Round2(tx.Amount)
		out = append(out, tx)
	}
	return out
}

// Settle validates the form and runs the settlement. Entries without a name
// are rejected with ErrNameRequired.
func (f Form) Settle() (*Result, error) {
	participants := make([]settle.Participant, 0, len(f.Entries))
	for _, e := range f.Entries {
		p, err := NewParticipant(e.Name, e.AmountPaid)
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return compute(f.Bill, participants)
}

func compute(rawBill string, participants []settle.Participant) (*Result, error) {
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	bill, ok := ParseBill(rawBill)
	if !ok {
		return nil, ErrBillMissing
	}
	balances := settle.Balances(bill, participants)
	for _, b := range balances {
		if math.IsNaN(b.Amount) || math.IsInf(b.Amount, 0) {
			return nil, ErrAmountOutOfRange
		}
	}
	txs := settle.Settle(bill, participants)
	if txs == nil {
		txs = []settle.Transaction{}
	}
	return &Result{
		Bill:         bill,
		Share:        settle.FairShare(bill, participants),
		Participants: participants,
		Transactions: txs,
		Residual:     settle.Unsettled(settle.Apply(balances, txs)),
	}, nil
}
