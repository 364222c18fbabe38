package storage

import (
	"context"
	"fmt"

	"github.com/alessandrolsdev/controle-financeiro-api/internal/core"
)

// The aggregation queries behind the dashboard and the trend chart. Both
// are plain reads over the user's transactions joined with their
// categories; a reversed period (start after end) matches nothing and
// yields empty results by design.

// DashboardData computes the dashboard summary for one user and period:
// income/expense totals, their exact difference, and per-category
// breakdowns ordered by summed amount descending.
func (r *Repository) DashboardData(ctx context.Context, userID int64, p core.Period) (*core.DashboardData, error) {
	income, err := r.sumByType(ctx, userID, p, core.TypeIncome)
	if err != nil {
		return nil, fmt.Errorf("total income: %w", err)
	}
	expense, err := r.sumByType(ctx, userID, p, core.TypeExpense)
	if err != nil {
		return nil, fmt.Errorf("total expense: %w", err)
	}

	expenseBreakdown, err := r.breakdownByCategory(ctx, userID, p, core.TypeExpense)
	if err != nil {
		return nil, fmt.Errorf("expense breakdown: %w", err)
	}
	incomeBreakdown, err := r.breakdownByCategory(ctx, userID, p, core.TypeIncome)
	if err != nil {
		return nil, fmt.Errorf("income breakdown: %w", err)
	}

	return &core.DashboardData{
		TotalIncome:      income,
		TotalExpense:     expense,
		Net:              income.Sub(expense),
		ExpenseBreakdown: expenseBreakdown,
		IncomeBreakdown:  incomeBreakdown,
	}, nil
}

func (r *Repository) sumByType(ctx context.Context, userID int64, p core.Period, typ core.CategoryType) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx, r.q(`
		SELECT COALESCE(SUM(t.valor_centavos), 0)
		FROM transacoes t
		JOIN categorias c ON c.id = t.categoria_id
		WHERE t.usuario_id = ? AND c.tipo = ? AND t.data >= ? AND t.data < ?
	`), userID, string(typ), r.dialect.TimeValue(p.Start), r.dialect.TimeValue(p.UpperBound())).Scan(&cents)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

func (r *Repository) breakdownByCategory(ctx context.Context, userID int64, p core.Period, typ core.CategoryType) ([]core.CategoryBreakdown, error) {
	rows, err := r.db.QueryContext(ctx, r.q(`
		SELECT c.nome, c.cor, SUM(t.valor_centavos) AS valor_total, COUNT(t.id) AS total_compras
		FROM transacoes t
		JOIN categorias c ON c.id = t.categoria_id
		WHERE t.usuario_id = ? AND c.tipo = ? AND t.data >= ? AND t.data < ?
		GROUP BY c.nome, c.cor
		ORDER BY SUM(t.valor_centavos) DESC
	`), userID, string(typ), r.dialect.TimeValue(p.Start), r.dialect.TimeValue(p.UpperBound()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// Empty, not nil: the frontend iterates the JSON array unconditionally.
	out := []core.CategoryBreakdown{}
	for rows.Next() {
		var b core.CategoryBreakdown
		if err := rows.Scan(&b.CategoryName, &b.Color, &b.Total.Cents, &b.Count); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// TrendSeries computes two independently bucketed sums over the period: one
// for income-type transactions, one for expense-type. filter "daily"
// buckets by hour of day ("YYYY-MM-DD HH:00:00"); any other value buckets
// by calendar date. Buckets with no transactions of a kind are simply
// absent from that list.
func (r *Repository) TrendSeries(ctx context.Context, userID int64, p core.Period, filter string) (*core.TrendSeries, error) {
	bucket := r.dialect.DayBucket("t.data")
	if filter == core.TrendDaily {
		bucket = r.dialect.HourBucket("t.data")
	}

	income, err := r.trendByType(ctx, bucket, userID, p, core.TypeIncome)
	if err != nil {
		return nil, fmt.Errorf("income trend: %w", err)
	}
	expense, err := r.trendByType(ctx, bucket, userID, p, core.TypeExpense)
	if err != nil {
		return nil, fmt.Errorf("expense trend: %w", err)
	}

	return &core.TrendSeries{Income: income, Expense: expense}, nil
}

func (r *Repository) trendByType(ctx context.Context, bucket string, userID int64, p core.Period, typ core.CategoryType) ([]core.TrendPoint, error) {
	rows, err := r.db.QueryContext(ctx, r.q(`
		SELECT `+bucket+` AS data, SUM(t.valor_centavos) AS valor
		FROM transacoes t
		JOIN categorias c ON c.id = t.categoria_id
		WHERE t.usuario_id = ? AND c.tipo = ? AND t.data >= ? AND t.data < ?
		GROUP BY `+bucket+`
		ORDER BY `+bucket+` ASC
	`), userID, string(typ), r.dialect.TimeValue(p.Start), r.dialect.TimeValue(p.UpperBound()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []core.TrendPoint{}
	for rows.Next() {
		var pt core.TrendPoint
		if err := rows.Scan(&pt.Key, &pt.Value.Cents); err != nil {
			return nil, err
		}
		out = append(out, pt)
	}
	return out, rows.Err()
}
