package domain

// CategorySale is one grouped row: units sold for a category.
type CategorySale struct {
	Name      string `db:"name" json:"name"`
	TotalSold int    `db:"total_sold" json:"total_sold"`
}

// OrderTotals is the order count and summed order amounts.
type OrderTotals struct {
	Count int   `db:"order_count"`
	Sum   Money `db:"total_sum"`
}

type Statistics struct {
	TotalOrders        int            `json:"total_orders"`
	AverageOrderAmount float64        `json:"average_order_amount"`
	MostSoldCategory   *CategorySale  `json:"most_sold_category"`
	LeastSoldCategory  *CategorySale  `json:"least_sold_category"`
	Categories         []CategorySale `json:"categories"`
}
