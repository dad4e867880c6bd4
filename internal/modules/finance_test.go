package modules

import (
	"math"
	"testing"

	"github.com/opdeck/opdeck/internal/models"
)

func TestBudgetRollupFollowsTransactions(t *testing.T) {
	_, r := testRegistry(t)
	_ = r.Finance.SetBudget("Meals", 200)

	_, _ = r.Finance.AddTransaction("Cafe", 12.50, "2026-01-10", "Meals", models.TxnExpense)
	_, _ = r.Finance.AddTransaction("Lunch", 20.00, "2026-01-11", "Meals", models.TxnExpense)
	// Income in the same category must not count as spend.
	_, _ = r.Finance.AddTransaction("Refund", 5.00, "2026-01-12", "Meals", models.TxnIncome)

	budget := findBudget(t, r, "Meals")
	if !almostEqual(budget.Spent, 32.50) {
		t.Errorf("spent = %v, want 32.50", budget.Spent)
	}

	txns := r.Finance.Transactions()
	_ = r.Finance.RemoveTransaction(txns[len(txns)-1].ID) // the 12.50 cafe entry
	budget = findBudget(t, r, "Meals")
	if !almostEqual(budget.Spent, 20.00) {
		t.Errorf("spent after removal = %v, want 20.00", budget.Spent)
	}
}

func TestSetBudgetUpdatesExistingCategory(t *testing.T) {
	_, r := testRegistry(t)
	_ = r.Finance.SetBudget("Office", 500)
	_ = r.Finance.SetBudget("Office", 750)

	budgets := r.Finance.Budgets()
	if len(budgets) != 1 {
		t.Fatalf("budgets = %d, want 1", len(budgets))
	}
	if budgets[0].Limit != 750 {
		t.Errorf("limit = %v, want 750", budgets[0].Limit)
	}
}

func TestBalance(t *testing.T) {
	_, r := testRegistry(t)
	_, _ = r.Finance.AddTransaction("Client", 1000, "2026-01-01", "Revenue", models.TxnIncome)
	_, _ = r.Finance.AddTransaction("Hosting", 150, "2026-01-02", "Infrastructure", models.TxnExpense)

	if got := r.Finance.Balance(); !almostEqual(got, 850) {
		t.Errorf("balance = %v, want 850", got)
	}
}

func findBudget(t *testing.T, r *Registry, category string) models.Budget {
	t.Helper()
	for _, b := range r.Finance.Budgets() {
		if b.Category == category {
			return b
		}
	}
	t.Fatalf("budget %s not found", category)
	return models.Budget{}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
