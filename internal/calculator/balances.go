package calculator

import (
	"sort"

	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/money"
)

// MemberBalance is one member's net position in a group.
type MemberBalance struct {
	Member     models.MemberName
	NetBalance money.Cents // Positive = owed money, Negative = owes money
	TotalPaid  money.Cents // Total contributed across all expenses
	TotalOwed  money.Cents // Total share owed across all expenses
}

// DebtEdge is a suggested transfer from one member to another.
type DebtEdge struct {
	From   models.MemberName // Person who owes
	To     models.MemberName // Person who is owed
	Amount money.Cents
}

// GroupBalances is the result of replaying a group's full expense history.
type GroupBalances struct {
	Balances []MemberBalance

	// TotalExpenses is the sum of all expense amounts, for display.
	TotalExpenses money.Cents

	// Transfers is a simplified set of payments that would settle the
	// group, produced by greedy debtor/creditor matching.
	Transfers []DebtEdge
}

// ComputeBalances replays every expense in the group: each payer's balance
// rises by what they paid, each participant's falls by their share. Addition
// commutes, so expense order cannot change the result.
//
// Every current member gets an entry, zero if they joined after all
// recorded expenses. Names that appear in the history but are no longer
// members are retained as accounted entries rather than silently dropped,
// which keeps the conservation property: the balances always sum to zero.
func ComputeBalances(group *models.Group, expenses []*models.Expense) *GroupBalances {
	balances := make(map[models.MemberName]*MemberBalance, len(group.Members))
	order := make([]models.MemberName, 0, len(group.Members))

	entry := func(name models.MemberName) *MemberBalance {
		if b, ok := balances[name]; ok {
			return b
		}
		b := &MemberBalance{Member: name}
		balances[name] = b
		order = append(order, name)
		return b
	}

	for _, m := range group.Members {
		entry(m)
	}

	var total money.Cents
	for _, e := range expenses {
		total += e.Amount
		for _, p := range e.PaidBy {
			entry(p.Member).TotalPaid += p.Amount
		}
		for _, s := range e.Splits {
			entry(s.Member).TotalOwed += s.Amount
		}
	}

	result := make([]MemberBalance, 0, len(order))
	for _, name := range order {
		b := balances[name]
		b.NetBalance = b.TotalPaid - b.TotalOwed
		result = append(result, *b)
	}

	return &GroupBalances{
		Balances:      result,
		TotalExpenses: total,
		Transfers:     simplifyDebts(result),
	}
}

// Settled reports whether every member's balance is within tolerance of
// zero. Group deletion is gated on this predicate.
func (g *GroupBalances) Settled() bool {
	for _, b := range g.Balances {
		if b.NetBalance.Abs() > money.Tolerance {
			return false
		}
	}
	return true
}

// Unsettled returns the members whose balances are outside tolerance, for
// reporting why a deletion was blocked.
func (g *GroupBalances) Unsettled() []MemberBalance {
	var out []MemberBalance
	for _, b := range g.Balances {
		if b.NetBalance.Abs() > money.Tolerance {
			out = append(out, b)
		}
	}
	return out
}

// simplifyDebts matches debtors with creditors greedily, largest first, to
// produce a short list of transfers that would settle the group.
func simplifyDebts(balances []MemberBalance) []DebtEdge {
	var creditors, debtors []MemberBalance
	for _, b := range balances {
		if b.NetBalance > money.Tolerance {
			creditors = append(creditors, b)
		} else if b.NetBalance < -money.Tolerance {
			debtors = append(debtors, b)
		}
	}
	sort.Slice(creditors, func(i, j int) bool { return creditors[i].NetBalance > creditors[j].NetBalance })
	sort.Slice(debtors, func(i, j int) bool { return debtors[i].NetBalance < debtors[j].NetBalance })

	owed := make(map[models.MemberName]money.Cents, len(creditors))
	owes := make(map[models.MemberName]money.Cents, len(debtors))
	for _, c := range creditors {
		owed[c.Member] = c.NetBalance
	}
	for _, d := range debtors {
		owes[d.Member] = -d.NetBalance
	}

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := debtors[i].Member
		creditor := creditors[j].Member

		amount := owes[debtor]
		if owed[creditor] < amount {
			amount = owed[creditor]
		}
		if amount > money.Tolerance {
			edges = append(edges, DebtEdge{From: debtor, To: creditor, Amount: amount})
		}

		owes[debtor] -= amount
		owed[creditor] -= amount
		if owes[debtor] <= money.Tolerance {
			i++
		}
		if owed[creditor] <= money.Tolerance {
			j++
		}
	}
	return edges
}
