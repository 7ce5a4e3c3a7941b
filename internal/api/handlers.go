package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/splitledger/splitledger/internal/calculator"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/money"
	"github.com/splitledger/splitledger/internal/service"
	"github.com/splitledger/splitledger/internal/storage"
)

// All currency amounts cross the wire as decimal strings ("45.00") so the
// JSON layer never renders money through binary floating point.

type groupResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Members   []string `json:"members"`
	CreatedAt int64    `json:"created_at"`
}

type payerDTO struct {
	Member string `json:"member"`
	Amount string `json:"amount"`
}

type splitDTO struct {
	Member     string `json:"member"`
	Amount     string `json:"amount"`
	Percentage string `json:"percentage,omitempty"`
	ShareUnits string `json:"share_units,omitempty"`
}

type expenseRequest struct {
	Description string     `json:"description"`
	Amount      string     `json:"amount"`
	SplitType   string     `json:"split_type"`
	PaidBy      []payerDTO `json:"paid_by"`
	Splits      []splitDTO `json:"splits"`
	Date        int64      `json:"date,omitempty"`
}

type expenseResponse struct {
	ID          string     `json:"id"`
	GroupID     string     `json:"group_id"`
	Description string     `json:"description"`
	Amount      string     `json:"amount"`
	SplitType   string     `json:"split_type"`
	PaidBy      []payerDTO `json:"paid_by"`
	Splits      []splitDTO `json:"splits"`
	Date        int64      `json:"date"`
	CreatedAt   int64      `json:"created_at"`
}

type balanceDTO struct {
	Member     string `json:"member"`
	NetBalance string `json:"net_balance"`
	TotalPaid  string `json:"total_paid"`
	TotalOwed  string `json:"total_owed"`
}

type transferDTO struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type balancesResponse struct {
	TotalExpenses string        `json:"total_expenses"`
	Settled       bool          `json:"settled"`
	Balances      []balanceDTO  `json:"balances"`
	Transfers     []transferDTO `json:"transfers"`
}

type errorResponse struct {
	Error     string       `json:"error"`
	Reason    string       `json:"reason,omitempty"`
	Residuals []balanceDTO `json:"residuals,omitempty"`
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string   `json:"name"`
		Members []string `json:"members"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "", "invalid request body")
		return
	}

	group, err := s.groups.CreateGroup(r.Context(), req.Name, req.Members)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	groupsCreated.Inc()
	writeJSON(w, http.StatusCreated, toGroupResponse(group))
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.groups.ListGroups(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]groupResponse, len(groups))
	for i, g := range groups {
		out[i] = toGroupResponse(g)
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": out})
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := s.groups.GetGroup(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(group))
}

func (s *Server) handleAddMembers(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Members []string `json:"members"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "", "invalid request body")
		return
	}

	group, err := s.groups.AddMembers(r.Context(), chi.URLParam(r, "groupID"), req.Members)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(group))
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.groups.DeleteGroup(r.Context(), chi.URLParam(r, "groupID")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := s.groups.Balances(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	balanceComputations.Inc()

	resp := balancesResponse{
		TotalExpenses: balances.TotalExpenses.String(),
		Settled:       balances.Settled(),
		Balances:      toBalanceDTOs(balances.Balances),
		Transfers:     make([]transferDTO, len(balances.Transfers)),
	}
	for i, t := range balances.Transfers {
		resp.Transfers[i] = transferDTO{From: t.From.String(), To: t.To.String(), Amount: t.Amount.String()}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecordExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "", "invalid request body")
		return
	}

	expense, err := req.toModel(chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "", err.Error())
		return
	}

	expense, err = s.expenses.RecordExpense(r.Context(), expense)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	expensesRecorded.Inc()
	writeJSON(w, http.StatusCreated, toExpenseResponse(expense))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.expenses.ListExpenses(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		out[i] = toExpenseResponse(e)
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": out})
}

func (s *Server) handleRecordSettlement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From   string `json:"from"`
		To     string `json:"to"`
		Amount string `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "", "invalid request body")
		return
	}
	amount, err := money.Parse(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "", err.Error())
		return
	}

	expense, err := s.expenses.RecordSettlement(r.Context(), chi.URLParam(r, "groupID"), req.From, req.To, amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	expensesRecorded.Inc()
	writeJSON(w, http.StatusCreated, toExpenseResponse(expense))
}

func (r *expenseRequest) toModel(groupID string) (*models.Expense, error) {
	amount, err := money.Parse(r.Amount)
	if err != nil {
		return nil, err
	}
	splitType, err := models.ParseSplitType(r.SplitType)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		GroupID:     groupID,
		Description: r.Description,
		Amount:      amount,
		SplitType:   splitType,
		Date:        r.Date,
	}

	for _, p := range r.PaidBy {
		paid, err := money.Parse(p.Amount)
		if err != nil {
			return nil, err
		}
		expense.PaidBy = append(expense.PaidBy, models.PayerShare{
			Member: models.MemberName(p.Member),
			Amount: paid,
		})
	}

	for _, sp := range r.Splits {
		share := models.ParticipantShare{Member: models.MemberName(sp.Member)}
		if share.Amount, err = money.Parse(sp.Amount); err != nil {
			return nil, err
		}
		if sp.Percentage != "" {
			if share.Percentage, err = decimal.NewFromString(sp.Percentage); err != nil {
				return nil, err
			}
		}
		if sp.ShareUnits != "" {
			if share.ShareUnits, err = decimal.NewFromString(sp.ShareUnits); err != nil {
				return nil, err
			}
		}
		expense.Splits = append(expense.Splits, share)
	}
	return expense, nil
}

func toGroupResponse(g *models.Group) groupResponse {
	members := make([]string, len(g.Members))
	for i, m := range g.Members {
		members[i] = m.String()
	}
	return groupResponse{ID: g.ID, Name: g.Name, Members: members, CreatedAt: g.CreatedAt}
}

func toExpenseResponse(e *models.Expense) expenseResponse {
	resp := expenseResponse{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Description: e.Description,
		Amount:      e.Amount.String(),
		SplitType:   string(e.SplitType),
		Date:        e.Date,
		CreatedAt:   e.CreatedAt,
	}
	for _, p := range e.PaidBy {
		resp.PaidBy = append(resp.PaidBy, payerDTO{Member: p.Member.String(), Amount: p.Amount.String()})
	}
	for _, sp := range e.Splits {
		dto := splitDTO{Member: sp.Member.String(), Amount: sp.Amount.String()}
		if !sp.Percentage.IsZero() {
			dto.Percentage = sp.Percentage.String()
		}
		if !sp.ShareUnits.IsZero() {
			dto.ShareUnits = sp.ShareUnits.String()
		}
		resp.Splits = append(resp.Splits, dto)
	}
	return resp
}

func toBalanceDTOs(balances []calculator.MemberBalance) []balanceDTO {
	out := make([]balanceDTO, len(balances))
	for i, b := range balances {
		out[i] = balanceDTO{
			Member:     b.Member.String(),
			NetBalance: b.NetBalance.String(),
			TotalPaid:  b.TotalPaid.String(),
			TotalOwed:  b.TotalOwed.String(),
		}
	}
	return out
}

// writeServiceError maps service and validation errors onto status codes,
// keeping the rejection reason and numeric detail from the error intact.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *calculator.ValidationError
	if errors.As(err, &verr) {
		validationRejections.WithLabelValues(string(verr.Reason)).Inc()
		writeError(w, http.StatusUnprocessableEntity, string(verr.Reason), verr.Error())
		return
	}

	var uerr *service.UnsettledError
	if errors.As(err, &uerr) {
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:     uerr.Error(),
			Reason:    "unsettled-balances",
			Residuals: toBalanceDTOs(uerr.Residuals),
		})
		return
	}

	var derr *service.DuplicateMemberError
	switch {
	case errors.As(err, &derr),
		errors.Is(err, service.ErrEmptyGroupName),
		errors.Is(err, service.ErrNoMembers),
		errors.Is(err, models.ErrEmptyMemberName):
		writeError(w, http.StatusBadRequest, "", err.Error())
	case errors.Is(err, storage.ErrGroupNotFound):
		writeError(w, http.StatusNotFound, "group-not-found", err.Error())
	case errors.Is(err, storage.ErrExpenseNotFound):
		writeError(w, http.StatusNotFound, "expense-not-found", err.Error())
	default:
		slog.Error("Internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "", "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, reason, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Reason: reason})
}
