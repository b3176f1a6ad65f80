package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/susu3304/splitbot/internal/billsplit"
)

// HandleSplit runs a /split subcommand against the channel's session.
func HandleSplit(s *discordgo.Session, i *discordgo.InteractionCreate, svc *billsplit.Service, historyLimit int) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		respondText(s, i, "No subcommand given")
		return
	}

	reply := splitReply(context.Background(), svc, i.ChannelID, data.Options[0], historyLimit)
	respondLong(s, i, reply)
}

func splitReply(ctx context.Context, svc *billsplit.Service, channelID string, sub *discordgo.ApplicationCommandInteractionDataOption, historyLimit int) string {
	switch sub.Name {
	case "bill":
		raw := ""
		if v := getStringOption(sub.Options, "amount"); v != nil {
			raw = *v
		}
		bill, ok := svc.SetBill(channelID, raw)
		if !ok {
			return fmt.Sprintf("%q is not a number. Set a valid bill before calculating.", raw)
		}
		return fmt.Sprintf("Total bill set to $%.2f", bill)

	case "add":
		name, amount := "", ""
		if v := getStringOption(sub.Options, "name"); v != nil {
			name = *v
		}
		if v := getStringOption(sub.Options, "amount"); v != nil {
			amount = *v
		}
		p, err := svc.AddParticipant(channelID, name, amount)
		if err != nil {
			return "A name is required to add a participant"
		}
		return "Added: " + billsplit.FormatParticipant(p)

	case "list":
		snap := svc.Snapshot(channelID)
		var b strings.Builder
		if snap.Bill == "" {
			b.WriteString("Total bill: not set\n")
		} else if bill, ok := billsplit.ParseBill(snap.Bill); ok {
			fmt.Fprintf(&b, "Total bill: $%.2f\n", bill)
		} else {
			fmt.Fprintf(&b, "Total bill: %q is not a valid number\n", snap.Bill)
		}
		if len(snap.Participants) == 0 {
			b.WriteString("No participants yet")
			return b.String()
		}
		fmt.Fprintf(&b, "Participants (%d):\n", len(snap.Participants))
		for _, p := range snap.Participants {
			b.WriteString(billsplit.FormatParticipant(p))
			b.WriteString("\n")
		}
		return strings.TrimRight(b.String(), "\n")

	case "calc":
		res, err := svc.Calculate(ctx, channelID)
		switch {
		case errors.Is(err, billsplit.ErrNoParticipants):
			return "Add at least one participant with `/split add` first"
		case errors.Is(err, billsplit.ErrBillMissing):
			return "Set the total bill with `/split bill` first"
		case errors.Is(err, billsplit.ErrAmountOutOfRange):
			return "Those amounts are too large to settle"
		case err != nil:
			log.Printf("split: calculate failed for channel %s: %v", channelID, err)
			return "Calculation failed"
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Each share: $%.2f\n", res.Share)
		if len(res.Transactions) == 0 {
			b.WriteString("Nobody needs to pay anyone\n")
		} else {
			b.WriteString("Transactions:\n")
			for _, line := range res.Lines() {
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
		for _, r := range res.Residual {
			fmt.Fprintf(&b, "%s is left %s $%.2f with nobody to settle against\n", r.Name, direction(r.Amount), abs(r.Amount))
		}
		return strings.TrimRight(b.String(), "\n")

	case "reset":
		svc.Reset(channelID)
		return "Cleared the bill and participants for this channel"

	case "history":
		limit := historyLimit
		if v := getIntOption(sub.Options, "limit"); v != nil && *v > 0 {
			limit = int(*v)
		}
		records, err := svc.History(ctx, channelID, limit)
		if errors.Is(err, billsplit.ErrHistoryDisabled) {
			return "Settlement history is not enabled"
		}
		if err != nil {
			log.Printf("split: history failed for channel %s: %v", channelID, err)
			return "Failed to load settlement history"
		}
		if len(records) == 0 {
			return "No settlements recorded in this channel yet"
		}
		var b strings.Builder
		for _, rec := range records {
			fmt.Fprintf(&b, "#%d %s: $%.2f between %d\n", rec.ID, rec.CreatedAt.Format("2006-01-02 15:04"), rec.Bill, len(rec.Participants))
			for _, tx := range rec.Transactions {
				b.WriteString("  ")
				b.WriteString(billsplit.FormatTransaction(tx))
				b.WriteString("\n")
			}
		}
		return strings.TrimRight(b.String(), "\n")

	default:
		return "Unknown subcommand"
	}
}

func direction(amount float64) string {
	if amount < 0 {
		return "owing"
	}
	return "owed"
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
