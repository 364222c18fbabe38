package core

const (
	// TrendDaily buckets by hour of day; every key has the shape
	// "YYYY-MM-DD HH:00:00". Any other filter value buckets by calendar
	// date ("YYYY-MM-DD").
	TrendDaily = "daily"
)

// CategoryBreakdown is one row of a dashboard breakdown: a category with its
// summed amount and transaction count over the period.
type CategoryBreakdown struct {
	CategoryName string `json:"nome_categoria"`
	Color        string `json:"cor"`
	Total        Money  `json:"valor_total"`
	Count        int64  `json:"total_compras"`
}

// DashboardData is the dashboard summary for one user and period.
// Breakdown lists are ordered by summed amount descending.
type DashboardData struct {
	TotalIncome      Money               `json:"total_receitas"`
	TotalExpense     Money               `json:"total_gastos"`
	Net              Money               `json:"lucro_liquido"`
	ExpenseBreakdown []CategoryBreakdown `json:"gastos_por_categoria"`
	IncomeBreakdown  []CategoryBreakdown `json:"receitas_por_categoria"`
}

// TrendPoint is one time bucket of a trend series. Key is the bucket label
// produced by the store dialect, already normalized to the same string shape
// on every backend.
type TrendPoint struct {
	Key   string `json:"data"`
	Value Money  `json:"valor"`
}

// TrendSeries carries two parallel, independently bucketed series ordered by
// key ascending. A bucket with no transactions of a kind has no entry in
// that list; consumers must not assume the lists are aligned or zero-filled.
type TrendSeries struct {
	Income  []TrendPoint `json:"receitas"`
	Expense []TrendPoint `json:"despesas"`
}
