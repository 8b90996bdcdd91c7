package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"budget/internal/core"
)

const maxBodyBytes = 64 << 10

type (
	credentialsRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Confirm  string `json:"confirm"`
	}

	passwordRequest struct {
		Password string `json:"password"`
		Confirm  string `json:"confirm"`
	}

	// Amount may be sent as a JSON number or a string; strings accept a comma separator.
	transactionRequest struct {
		Date     string          `json:"date"`
		Category string          `json:"category"`
		Amount   json.RawMessage `json:"amount"`
	}

	userResponse struct {
		UserID   int64  `json:"user_id"`
		Username string `json:"username"`
	}

	transactionResponse struct {
		ID       int64  `json:"id"`
		Date     string `json:"date"`
		Category string `json:"category"`
		Amount   string `json:"amount"`
		UserID   int64  `json:"user_id"`
	}

	monthResponse struct {
		Month string `json:"month"`
		Total string `json:"total"`
	}

	summaryResponse struct {
		Months              []monthResponse `json:"months"`
		CurrentMonthSavings *string         `json:"current_month_savings"`
	}

	errorResponse struct {
		Error string `json:"error"`
	}
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// pathID parses a positive integer path segment.
func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

func parseAmountField(raw json.RawMessage) (decimal.Decimal, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Decimal{}, core.ErrInvalidAmount
	}
	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Decimal{}, core.ErrInvalidAmount
		}
	} else {
		s = string(raw)
	}
	return core.ParseAmount(s)
}

func (req transactionRequest) toTransaction(userID int64) (core.Transaction, error) {
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := parseAmountField(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	tx := core.Transaction{
		Date:     date,
		Category: strings.TrimSpace(req.Category),
		Amount:   amount,
		UserID:   userID,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	return transactionResponse{
		ID:       tx.ID,
		Date:     tx.Date.String(),
		Category: tx.Category,
		Amount:   core.FormatAmount(tx.Amount),
		UserID:   tx.UserID,
	}
}

func toSummaryResponse(s core.Summary) summaryResponse {
	out := summaryResponse{Months: make([]monthResponse, 0, len(s.Months))}
	for _, b := range s.Months {
		out.Months = append(out.Months, monthResponse{Month: b.Month, Total: core.FormatAmount(b.Total)})
	}
	if s.HasCurrentMonth {
		v := core.FormatAmount(s.CurrentMonthSavings)
		out.CurrentMonthSavings = &v
	}
	return out
}
