package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/susu3304/splitbot/internal/billsplit"
	"github.com/susu3304/splitbot/internal/db"
	"github.com/susu3304/splitbot/internal/settle"
)

// formValue accepts a JSON string or number, so amounts reach the lenient
// parsers exactly as typed.
type formValue string

func (v *formValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = formValue(s)
		return nil
	}
	*v = formValue(strings.TrimSpace(string(b)))
	return nil
}

type participantRequest struct {
	Name       string    `json:"name"`
	AmountPaid formValue `json:"amount_paid"`
}

type resultResponse struct {
	*billsplit.Result
	RoundedTransactions []settle.Transaction `json:"rounded_transactions"`
	Lines               []string             `json:"lines"`
}

func newResultResponse(res *billsplit.Result) resultResponse {
	return resultResponse{Result: res, RoundedTransactions: res.Rounded(), Lines: res.Lines()}
}

type sessionResponse struct {
	billsplit.Session
	ParticipantLines []string `json:"participant_lines"`
	Lines            []string `json:"lines"`
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleSettle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Bill         formValue            `json:"bill"`
		Participants []participantRequest `json:"participants"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	form := billsplit.Form{Bill: string(req.Bill)}
	for _, p := range req.Participants {
		form.Entries = append(form.Entries, billsplit.Entry{Name: p.Name, AmountPaid: string(p.AmountPaid)})
	}

	res, err := form.Settle()
	if err != nil {
		writeFormError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newResultResponse(res))
}

func (a *API) handleGetSession(w http.ResponseWriter, r *http.Request) {
	snap := a.svc.Snapshot(mux.Vars(r)["id"])

	resp := sessionResponse{
		Session:          snap,
		ParticipantLines: []string{},
		Lines:            []string{},
	}
	for _, p := range snap.Participants {
		resp.ParticipantLines = append(resp.ParticipantLines, billsplit.FormatParticipant(p))
	}
	for _, tx := range snap.Transactions {
		resp.Lines = append(resp.Lines, billsplit.FormatTransaction(tx))
	}
	if resp.Participants == nil {
		resp.Participants = []settle.Participant{}
	}
	if resp.Transactions == nil {
		resp.Transactions = []settle.Transaction{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleResetSession(w http.ResponseWriter, r *http.Request) {
	a.svc.Reset(mux.Vars(r)["id"])
	writeJSON(w, http.StatusOK, map[string]string{"message": "session reset"})
}

func (a *API) handleSetBill(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Bill formValue `json:"bill"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	value, ok := a.svc.SetBill(mux.Vars(r)["id"], string(req.Bill))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"bill":  strings.TrimSpace(string(req.Bill)),
		"valid": ok,
		"value": value,
	})
}

func (a *API) handleAddParticipant(w http.ResponseWriter, r *http.Request) {
	var req participantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := a.svc.AddParticipant(mux.Vars(r)["id"], req.Name, string(req.AmountPaid))
	if err != nil {
		writeFormError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"participant": p,
		"line":        billsplit.FormatParticipant(p),
	})
}

func (a *API) handleCalculate(w http.ResponseWriter, r *http.Request) {
	res, err := a.svc.Calculate(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeFormError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newResultResponse(res))
}

func (a *API) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := a.config.HistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	records, err := a.svc.History(r.Context(), mux.Vars(r)["id"], limit)
	if err != nil {
		writeHistoryError(w, err)
		return
	}
	if records == nil {
		records = []db.SettlementRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (a *API) handleGetSettlement(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["settlement_id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid settlement_id", http.StatusBadRequest)
		return
	}

	rec, err := a.svc.Settlement(r.Context(), id)
	if err != nil {
		writeHistoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Declined runs are reported as 422; a nameless participant is a bad request.
func writeFormError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, billsplit.ErrNameRequired):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, billsplit.ErrNoParticipants), errors.Is(err, billsplit.ErrBillMissing),
		errors.Is(err, billsplit.ErrAmountOutOfRange):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		log.Printf("api: unexpected form error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeHistoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, billsplit.ErrHistoryDisabled), errors.Is(err, db.ErrSettlementNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		log.Printf("api: history lookup failed: %v", err)
		http.Error(w, fmt.Sprintf("failed to load history: %v", err), http.StatusInternalServerError)
	}
}

// writeJSON encodes before writing the status so an encoding failure
// still becomes a 500.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		log.Printf("api: failed to encode response: %v", err)
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
