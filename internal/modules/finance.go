package modules

import (
	"log/slog"

	"github.com/opdeck/opdeck/internal/mirror"
	"github.com/opdeck/opdeck/internal/models"
	"github.com/opdeck/opdeck/internal/storage"
)

// FinanceService manages transactions and budgets. Budget spent amounts
// are a rollup of expense transactions by category, recomputed whenever a
// transaction changes.
type FinanceService struct {
	txns    *mirror.Mirror[models.Transaction]
	budgets *mirror.Mirror[models.Budget]
	notify  Notifier
}

func newFinanceService(store *storage.Store, logger *slog.Logger, notify Notifier, onErr mirror.CommitErrorHandler) *FinanceService {
	txnCol := storage.NewCollection[models.Transaction](store, models.CollectionTransactions)
	budCol := storage.NewCollection[models.Budget](store, models.CollectionBudgets)
	return &FinanceService{
		txns:    mirror.New(txnCol, logger, mirror.WithCommitErrorHandler[models.Transaction](onErr)),
		budgets: mirror.New(budCol, logger, mirror.WithCommitErrorHandler[models.Budget](onErr)),
		notify:  notify,
	}
}

func seedTransactions() []models.Transaction {
	return []models.Transaction{
		{ID: "1", Merchant: "AWS Web Services", Amount: 245.00, Date: "2025-11-19", Category: "Infrastructure", Type: models.TxnExpense},
		{ID: "2", Merchant: "Client Retainer - TechCorp", Amount: 5000.00, Date: "2025-11-18", Category: "Revenue", Type: models.TxnIncome},
		{ID: "3", Merchant: "Uber Business", Amount: 45.50, Date: "2025-11-18", Category: "Transport", Type: models.TxnExpense},
		{ID: "4", Merchant: "WeWork Subscription", Amount: 450.00, Date: "2025-11-15", Category: "Office", Type: models.TxnExpense},
		{ID: "5", Merchant: "Starbucks", Amount: 12.40, Date: "2025-11-14", Category: "Meals", Type: models.TxnExpense},
	}
}

func seedBudgets() []models.Budget {
	return []models.Budget{
		{ID: "b1", Category: "Infrastructure", Limit: 500, Spent: 245},
		{ID: "b2", Category: "Office", Limit: 1000, Spent: 450},
		{ID: "b3", Category: "Meals", Limit: 200, Spent: 12.40},
		{ID: "b4", Category: "Marketing", Limit: 2000, Spent: 0},
	}
}

func (s *FinanceService) init() {
	s.txns.Init(seedTransactions())
	s.budgets.Init(seedBudgets())
}

// Transactions returns a snapshot of all transactions.
func (s *FinanceService) Transactions() []models.Transaction { return s.txns.Snapshot() }

// Budgets returns a snapshot of all budgets.
func (s *FinanceService) Budgets() []models.Budget { return s.budgets.Snapshot() }

// AddTransaction records an entry and refreshes budget rollups.
func (s *FinanceService) AddTransaction(merchant string, amount float64, date, category string, typ models.TransactionType) (models.Transaction, error) {
	txn := models.Transaction{
		ID:       models.NewID(),
		Merchant: merchant,
		Amount:   amount,
		Date:     date,
		Category: category,
		Type:     typ,
	}
	err := s.txns.Apply(func(txns []models.Transaction) []models.Transaction {
		return append([]models.Transaction{txn}, txns...)
	})
	if err == nil {
		err = s.recalcBudgets()
	}
	s.notify(models.CollectionTransactions, "created", txn.ID)
	return txn, err
}

// RemoveTransaction deletes an entry and refreshes budget rollups.
func (s *FinanceService) RemoveTransaction(id string) error {
	err := s.txns.Apply(func(txns []models.Transaction) []models.Transaction {
		kept := txns[:0]
		for _, t := range txns {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		return kept
	})
	if err == nil {
		err = s.recalcBudgets()
	}
	s.notify(models.CollectionTransactions, "deleted", id)
	return err
}

// SetBudget creates or updates the limit for a category.
func (s *FinanceService) SetBudget(category string, limit float64) error {
	err := s.budgets.Apply(func(budgets []models.Budget) []models.Budget {
		for i := range budgets {
			if budgets[i].Category == category {
				budgets[i].Limit = limit
				return budgets
			}
		}
		return append(budgets, models.Budget{ID: models.NewID(), Category: category, Limit: limit})
	})
	if err == nil {
		err = s.recalcBudgets()
	}
	s.notify(models.CollectionBudgets, "updated", category)
	return err
}

// Balance returns total income minus total expenses.
func (s *FinanceService) Balance() float64 {
	var balance float64
	for _, t := range s.txns.Snapshot() {
		switch t.Type {
		case models.TxnIncome:
			balance += t.Amount
		case models.TxnExpense:
			balance -= t.Amount
		}
	}
	return balance
}

// recalcBudgets re-derives every budget's spent amount from the expense
// transactions in its category.
func (s *FinanceService) recalcBudgets() error {
	spent := make(map[string]float64)
	for _, t := range s.txns.Snapshot() {
		if t.Type == models.TxnExpense {
			spent[t.Category] += t.Amount
		}
	}
	return s.budgets.Apply(func(budgets []models.Budget) []models.Budget {
		for i := range budgets {
			budgets[i].Spent = spent[budgets[i].Category]
		}
		return budgets
	})
}
