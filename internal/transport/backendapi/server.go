// Package backendapi serves the finance API contract over in-memory data, for
// local development of the remote data source.
package backendapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kislikjeka/fintrack/internal/infra/gateway/financeapi"
	"github.com/kislikjeka/fintrack/internal/infra/memory"
	"github.com/kislikjeka/fintrack/internal/platform/transaction"
	apperrors "github.com/kislikjeka/fintrack/internal/shared/errors"
	"github.com/kislikjeka/fintrack/internal/transport/httpapi/middleware"
	"github.com/kislikjeka/fintrack/pkg/logger"
)

// Server answers finance API requests from a memory source
type Server struct {
	src *memory.Source
	log *logger.Logger
}

// NewServer creates a new mock finance API server
func NewServer(src *memory.Source, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}
	return &Server{src: src, log: log.WithComponent("mock-api")}
}

// Router mounts the finance API under /api
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery(s.log))
	r.Use(middleware.Logger(s.log))

	r.Route("/api", func(r chi.Router) {
		r.Get("/transactions", s.getTransactions)
		r.Post("/transactions", s.createTransaction)
		r.Get("/balances", s.getBalances)
		r.Get("/spending/category", s.getSpending)
		r.Get("/charts/category", s.getCategoryChart)
		r.Get("/charts/monthly", s.getMonthlyChart)
	})

	return r
}

func (s *Server) getTransactions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondWithError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	txs := s.src.Transactions(r.Context(), limit)
	resp := financeapi.TransactionsResponse{Transactions: make([]financeapi.TransactionDTO, 0, len(txs))}
	for _, tx := range txs {
		resp.Transactions = append(resp.Transactions, toDTO(tx))
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var dto financeapi.TransactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := financeapi.FromDTO(dto)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	tx.ID = transaction.NewID()

	created, err := s.src.CreateTransaction(r.Context(), tx)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, toDTO(created))
}

func (s *Server) getBalances(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, financeapi.BalancesResponse{Balances: s.src.Balances(r.Context())})
}

func (s *Server) getSpending(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rng, err := transaction.ParseDateRange(q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, financeapi.SpendingResponse{Spending: s.src.SpendingByCategory(r.Context(), rng)})
}

func (s *Server) getCategoryChart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rng, err := transaction.ParseDateRange(q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, financeapi.ChartResponse{Chart: s.src.CategoryChart(r.Context(), rng)})
}

func (s *Server) getMonthlyChart(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, financeapi.ChartResponse{Chart: s.src.MonthlyChart(r.Context())})
}

func toDTO(tx *transaction.Transaction) financeapi.TransactionDTO {
	dto := financeapi.ToDTO(tx)
	dto.ID = financeapi.FlexibleID(tx.ID.String())
	return dto
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithAppError(w http.ResponseWriter, err error) {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrCodeValidation, apperrors.ErrCodeBadRequest:
		respondWithError(w, http.StatusBadRequest, err.Error())
	case apperrors.ErrCodeNotFound:
		respondWithError(w, http.StatusNotFound, err.Error())
	case apperrors.ErrCodeConflict:
		respondWithError(w, http.StatusConflict, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
