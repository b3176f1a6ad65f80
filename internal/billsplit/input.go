package billsplit

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/susu3304/splitbot/internal/settle"
)

var (
	ErrNameRequired     = errors.New("name is required")
	ErrNoParticipants   = errors.New("add at least one participant first")
	ErrBillMissing      = errors.New("total bill is missing or not a number")
	ErrAmountOutOfRange = errors.New("amounts are too large to settle")
)

// leading decimal literal, the same prefix a browser's parseFloat accepts
var numberPrefix = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

func parseNumber(raw string) (float64, bool) {
	m := numberPrefix.FindString(strings.TrimSpace(raw))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseAmount coerces user input to an amount paid. Anything unparsable is 0.
func ParseAmount(raw string) float64 {
	v, _ := parseNumber(raw)
	return v
}

// ParseBill parses the bill total. ok is false for empty or unparsable input.
func ParseBill(raw string) (float64, bool) {
	return parseNumber(raw)
}

// NewParticipant validates a form entry. The name is required; the amount
// never causes a rejection.
func NewParticipant(name, rawAmount string) (settle.Participant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return settle.Participant{}, ErrNameRequired
	}
	return settle.Participant{Name: name, AmountPaid: ParseAmount(rawAmount)}, nil
}

func FormatTransaction(tx settle.Transaction) string {
	return fmt.Sprintf("%s should pay %s $%.2f", tx.Payer, tx.Receiver, tx.Amount)
}

func FormatParticipant(p settle.Participant) string {
	return fmt.Sprintf("%s paid $%.2f", p.Name, p.AmountPaid)
}
