// Package settle turns what each participant paid toward a shared bill into
// the payer -> receiver transfers that even everyone out.
package settle

import "math"

// Tolerance is the magnitude below which a balance counts as settled.
const Tolerance = 0.01

type Participant struct {
	Name       string  `json:"name"`
	AmountPaid float64 `json:"amount_paid"`
}

type Transaction struct {
	Payer    string  `json:"payer"`
	Receiver string  `json:"receiver"`
	Amount   float64 `json:"amount"`
}

// Balance is AmountPaid minus the fair share. Positive means the participant
// is owed money, negative means they owe.
type Balance struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// FairShare is bill divided evenly by the participant count (duplicates included).
func FairShare(bill float64, participants []Participant) float64 {
	if len(participants) == 0 {
		return 0
	}
	return bill / float64(len(participants))
}

// Balances computes the starting balance of every distinct name, in the order
// each name first appears. A repeated name keeps its first position but takes
// the later entry's value.
func Balances(bill float64, participants []Participant) []Balance {
	if len(participants) == 0 {
		return nil
	}
	share := FairShare(bill, participants)
	index := make(map[string]int, len(participants))
	out := make([]Balance, 0, len(participants))
	for _, p := range participants {
		amount := p.AmountPaid - share
		if i, ok := index[p.Name]; ok {
			out[i].Amount = amount
			continue
		}
		index[p.Name] = len(out)
		out = append(out, Balance{Name: p.Name, Amount: amount})
	}
	return out
}

// Settle repeatedly pairs the largest debtor with the largest creditor until
// no debtor or no creditor outside Tolerance is left. Amounts keep full
// precision; round with Round2 only when displaying.
func Settle(bill float64, participants []Participant) []Transaction {
	balances := Balances(bill, participants)
	var txs []Transaction
	for {
		payer, receiver := pick(balances)
		if payer < 0 || receiver < 0 {
			return txs
		}
		amount := math.Min(-balances[payer].Amount, balances[receiver].Amount)
		txs = append(txs, Transaction{
			Payer:    balances[payer].Name,
			Receiver: balances[receiver].Name,
			Amount:   amount,
		})
		balances[payer].Amount += amount
		balances[receiver].Amount -= amount
	}
}

// pick returns the indexes of the most negative and most positive balances
// outside Tolerance, or -1 when there is none. Ties keep the earlier index.
// NaN never compares true, so it is never picked.
func pick(balances []Balance) (payer, receiver int) {
	payer, receiver = -1, -1
	for i, b := range balances {
		if b.Amount < -Tolerance && (payer < 0 || b.Amount < balances[payer].Amount) {
			payer = i
		}
		if b.Amount > Tolerance && (receiver < 0 || b.Amount > balances[receiver].Amount) {
			receiver = i
		}
	}
	return payer, receiver
}

// Apply replays txs on a copy of balances. Transactions naming someone not in
// balances are ignored.
func Apply(balances []Balance, txs []Transaction) []Balance {
	out := make([]Balance, len(balances))
	copy(out, balances)
	index := make(map[string]int, len(out))
	for i, b := range out {
		index[b.Name] = i
	}
	for _, tx := range txs {
		if i, ok := index[tx.Payer]; ok {
			out[i].Amount += tx.Amount
		}
		if i, ok := index[tx.Receiver]; ok {
			out[i].Amount -= tx.Amount
		}
	}
	return out
}

// Unsettled returns the balances still outside Tolerance.
func Unsettled(balances []Balance) []Balance {
	var out []Balance
	for _, b := range balances {
		if math.Abs(b.Amount) > Tolerance {
			out = append(out, b)
		}
	}
	return out
}

// Round2 rounds half away from zero to two decimals.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
