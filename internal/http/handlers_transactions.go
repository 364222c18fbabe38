package http

import (
	"net/http"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 0)

	list, err := s.transactions.List(r.Context(), currentUser(r).ID, skip, limit)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponses(list))
}

func (s *Server) handleListTransactionsByPeriod(w http.ResponseWriter, r *http.Request) {
	p, ok := parsePeriod(w, r)
	if !ok {
		return
	}

	list, err := s.transactions.ListByPeriod(r.Context(), currentUser(r).ID, p)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponses(list))
}

// Mutations take the period the frontend is displaying as query params and
// answer with the recomputed dashboard for it, saving a second round trip.

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	var req transactionRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	tr := req.toTransaction(currentUser(r).ID)
	dash, err := s.transactions.Create(r.Context(), &tr, p)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if dash == nil {
		// Deferred recompute: the write landed, the dashboard arrives via
		// the worker. 202 tells the frontend to poll.
		w.WriteHeader(http.StatusAccepted)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	var req transactionRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	user := currentUser(r)
	dash, err := s.transactions.Update(r.Context(), id, user.ID, req.toTransaction(user.ID), p)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if dash == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, ok := parsePeriod(w, r)
	if !ok {
		return
	}

	dash, err := s.transactions.Delete(r.Context(), id, currentUser(r).ID, p)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if dash == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}
