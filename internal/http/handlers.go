package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/middleware/trace"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	})
}

// handleReady verifies the store answers a ping
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, httpStatus := "ready", http.StatusOK
	checks := map[string]string{"store": "not_configured"}
	if s.store != nil {
		if err := s.store.Ping(ctx); err != nil {
			checks["store"] = "failed: " + err.Error()
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["store"] = "ok"
		}
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	logger := applog.FromContext(r.Context()).WithComponent(applog.ComponentAccount)

	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID, ok, err := s.accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		logger.ErrorContext(r.Context(), "Login failed", applog.FieldError, err, applog.FieldOperation, applog.OpLogin)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if !ok {
		logger.WarnContext(r.Context(), "Invalid credentials",
			applog.FieldUsername, req.Username,
			applog.FieldClientIP, trace.GetClientIP(r.Context()))
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	writeJSON(w, http.StatusOK, userResponse{UserID: userID, Username: req.Username})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	name, err := s.accounts.GetUsername(r.Context(), userID)
	if err != nil {
		s.internalError(w, r, applog.ComponentAccount, applog.OpRead, "Failed to look up user", err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{UserID: userID, Username: name})
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := core.ValidateNewAccount(req.Username, req.Password, req.Confirm); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.accounts.CreateUser(r.Context(), req.Username, req.Password)
	if err != nil {
		s.internalError(w, r, applog.ComponentAccount, applog.OpCreate, "Failed to create user", err)
		return
	}
	if !created {
		writeError(w, http.StatusConflict, "username already taken")
		return
	}

	applog.FromContext(r.Context()).WithComponent(applog.ComponentAccount).
		InfoContext(r.Context(), "User created", applog.FieldUsername, req.Username)

	writeJSON(w, http.StatusCreated, map[string]string{"username": req.Username})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req passwordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := core.ValidatePassword(req.Password, req.Confirm); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.accounts.ChangePassword(r.Context(), userID, req.Password); err != nil {
		s.internalError(w, r, applog.ComponentAccount, applog.OpUpdate, "Failed to change password", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := s.transactions.FetchTransactions(r.Context(), userID)
	if err != nil {
		s.internalError(w, r, applog.ComponentTransaction, applog.OpList, "Failed to list transactions", err)
		return
	}

	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionResponse(tx))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tx, err := req.toTransaction(userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.transactions.AddTransaction(r.Context(), userID, tx.Date, tx.Category, tx.Amount)
	if errors.Is(err, core.ErrUnknownUser) {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentTransaction).
			WarnContext(r.Context(), "Transaction for unknown user rejected",
				applog.FieldOperation, applog.OpCreate,
				applog.FieldUserID, userID)
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		s.internalError(w, r, applog.ComponentTransaction, applog.OpCreate, "Failed to add transaction", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	txID, err := pathID(r, "txID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	deleted, err := s.transactions.DeleteTransaction(r.Context(), userID, txID)
	if err != nil {
		s.internalError(w, r, applog.ComponentTransaction, applog.OpDelete, "Failed to delete transaction", err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := s.transactions.Summary(r.Context(), userID)
	if err != nil {
		s.internalError(w, r, applog.ComponentTransaction, applog.OpSummary, "Failed to build summary", err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, component, op, msg string, err error) {
	applog.FromContext(r.Context()).WithComponent(component).
		ErrorContext(r.Context(), msg, applog.FieldOperation, op, applog.FieldError, err)
	writeError(w, http.StatusInternalServerError, "internal error")
}
