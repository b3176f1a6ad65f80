package settle

import (
	"math"
	"math/rand"
	"reflect"
	"testing"
)

func TestSettle(t *testing.T) {
	tests := []struct {
		name         string
		bill         float64
		participants []Participant
		want         []Transaction
	}{
		{
			name:         "already settled",
			bill:         100,
			participants: []Participant{{"A", 50}, {"B", 50}},
			want:         nil,
		},
		{
			name:         "two parties",
			bill:         100,
			participants: []Participant{{"A", 100}, {"B", 0}},
			want:         []Transaction{{Payer: "B", Receiver: "A", Amount: 50}},
		},
		{
			name:         "three parties, first debtor pays first",
			bill:         90,
			participants: []Participant{{"A", 90}, {"B", 0}, {"C", 0}},
			want: []Transaction{
				{Payer: "B", Receiver: "A", Amount: 30},
				{Payer: "C", Receiver: "A", Amount: 30},
			},
		},
		{
			name:         "tied creditors, first creditor is paid first",
			bill:         120,
			participants: []Participant{{"A", 0}, {"B", 60}, {"C", 60}, {"D", 0}},
			want: []Transaction{
				{Payer: "A", Receiver: "B", Amount: 30},
				{Payer: "D", Receiver: "C", Amount: 30},
			},
		},
		{
			name:         "largest debtor pays largest creditor",
			bill:         300,
			participants: []Participant{{"A", 10}, {"B", 200}, {"C", 90}},
			want: []Transaction{
				{Payer: "A", Receiver: "B", Amount: 90},
				{Payer: "C", Receiver: "B", Amount: 10},
			},
		},
		{
			name:         "within tolerance is left alone",
			bill:         100,
			participants: []Participant{{"A", 33.33}, {"B", 33.33}, {"C", 33.34}},
			want:         nil,
		},
		{
			name:         "single participant who paid in full",
			bill:         42,
			participants: []Participant{{"A", 42}},
			want:         nil,
		},
		{
			name:         "single participant who underpaid",
			bill:         100,
			participants: []Participant{{"A", 30}},
			want:         nil,
		},
		{
			name:         "no participants",
			bill:         100,
			participants: nil,
			want:         nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Settle(tt.bill, tt.participants)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Settle(%v, %v) = %v, want %v", tt.bill, tt.participants, got, tt.want)
			}
		})
	}
}

func TestSettleSkipsNearZeroBalances(t *testing.T) {
	// C's balance is +0.005, inside tolerance, while A and B still trade.
	txs := Settle(150.015, []Participant{{"A", 100}, {"B", 0}, {"C", 50.01}})
	if len(txs) != 1 {
		t.Fatalf("expected one transaction, got %v", txs)
	}
	if txs[0].Payer != "B" || txs[0].Receiver != "A" || math.Abs(txs[0].Amount-49.995) > 1e-9 {
		t.Errorf("got %+v, want B pays A 49.995", txs[0])
	}
	for _, tx := range txs {
		if tx.Payer == "C" || tx.Receiver == "C" {
			t.Errorf("C is within tolerance but appears in %+v", tx)
		}
	}
}

func TestSettleSingleParticipantResidual(t *testing.T) {
	participants := []Participant{{"A", 30}}
	if got := Settle(100, participants); len(got) != 0 {
		t.Fatalf("expected no transactions, got %v", got)
	}
	residual := Unsettled(Balances(100, participants))
	if len(residual) != 1 || residual[0].Name != "A" || residual[0].Amount != -70 {
		t.Errorf("unexpected residual %v", residual)
	}
}

func TestSettleConverges(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for run := 0; run < 500; run++ {
		n := 2 + rng.Intn(7)
		participants := make([]Participant, n)
		var bill float64
		for i := range participants {
			paid := float64(rng.Intn(200))
			participants[i] = Participant{Name: string(rune('A' + i)), AmountPaid: paid}
			bill += paid
		}

		txs := Settle(bill, participants)
		if len(txs) > n-1 {
			t.Fatalf("run %d: %d transactions for %d participants", run, len(txs), n)
		}
		for _, tx := range txs {
			if tx.Amount <= 0 {
				t.Fatalf("run %d: non-positive transaction %v", run, tx)
			}
			if tx.Payer == tx.Receiver {
				t.Fatalf("run %d: self transfer %v", run, tx)
			}
		}
		final := Apply(Balances(bill, participants), txs)
		if left := Unsettled(final); len(left) != 0 {
			t.Fatalf("run %d: %v left unsettled (participants %v, txs %v)", run, left, participants, txs)
		}
	}
}

func TestSettleIsRepeatable(t *testing.T) {
	participants := []Participant{{"A", 12.5}, {"B", 80}, {"C", 0}, {"D", 7.25}}
	first := Settle(99.75, participants)
	second := Settle(99.75, participants)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ: %v vs %v", first, second)
	}
	if participants[1].AmountPaid != 80 {
		t.Errorf("input was modified: %v", participants)
	}
}

func TestSettleDuplicateNames(t *testing.T) {
	participants := []Participant{{"A", 100}, {"B", 0}, {"A", 0}}

	balances := Balances(100, participants)
	if len(balances) != 2 {
		t.Fatalf("expected duplicate names to collapse, got %v", balances)
	}
	if balances[0].Name != "A" || balances[1].Name != "B" {
		t.Errorf("expected first-seen order, got %v", balances)
	}
	share := 100.0 / 3
	if balances[0].Amount != -share {
		t.Errorf("expected later entry to win, got %v", balances[0].Amount)
	}

	// Both collapsed balances are negative: nobody to receive.
	if got := Settle(100, participants); len(got) != 0 {
		t.Errorf("expected no transactions, got %v", got)
	}
}

func TestSettleOddBills(t *testing.T) {
	tests := []struct {
		name         string
		bill         float64
		participants []Participant
	}{
		{"zero bill", 0, []Participant{{"A", 10}, {"B", 0}}},
		{"negative bill", -100, []Participant{{"A", 0}, {"B", 0}}},
		{"NaN bill", math.NaN(), []Participant{{"A", 10}, {"B", 0}}},
		{"infinite payment", 100, []Participant{{"A", math.Inf(1)}, {"B", 0}, {"C", 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs := Settle(tt.bill, tt.participants)
			if len(txs) > len(tt.participants)-1 {
				t.Errorf("too many transactions: %v", txs)
			}
		})
	}

	if got := Balances(-100, []Participant{{"A", 0}, {"B", 0}}); got[0].Amount != 50 || got[1].Amount != 50 {
		t.Errorf("negative bill balances = %v", got)
	}
}

func TestApplyIgnoresUnknownNames(t *testing.T) {
	balances := []Balance{{"A", 10}, {"B", -10}}
	got := Apply(balances, []Transaction{{Payer: "B", Receiver: "A", Amount: 10}, {Payer: "Z", Receiver: "A", Amount: 1}})
	want := []Balance{{"A", -1}, {"B", 0}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Apply = %v, want %v", got, want)
	}
	if balances[0].Amount != 10 {
		t.Errorf("Apply modified its input")
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{33.333333, 33.33},
		{66.666666, 66.67},
		{0.125, 0.13},
		{-1.005, -1},
		{50, 50},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
