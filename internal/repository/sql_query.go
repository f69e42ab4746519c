package repository

import (
	"fmt"
	"strings"

	"pricewatch/internal/domain"
)

// sortColumns maps sortable domain fields to SQL columns. Anything else is rejected
// to keep ORDER BY free of user input.
var sortColumns = map[string]string{
	domain.SortFieldPrice:                "price",
	domain.SortFieldPercentageOfDiscount: "percentage_of_discount",
	domain.SortFieldDate:                 "date",
}

// whereBuilder accumulates AND-ed conditions with positional parameters
type whereBuilder struct {
	conditions []string
	args       []interface{}
}

func (b *whereBuilder) add(condition string, arg interface{}) {
	b.args = append(b.args, arg)
	b.conditions = append(b.conditions, fmt.Sprintf(condition, len(b.args)))
}

func (b *whereBuilder) addIfSet(column, value string) {
	if value != "" {
		b.add(column+" = $%d", value)
	}
}

func (b *whereBuilder) clause() string {
	if len(b.conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(b.conditions, " AND ")
}

// orderByClause renders the requested sort. Unsorted queries fall back to insertion order.
func orderByClause(sort domain.Sort) (string, error) {
	if sort.IsUnsorted() {
		return "ORDER BY seq ASC", nil
	}

	column, ok := sortColumns[sort.Field]
	if !ok {
		return "", fmt.Errorf("unsupported sort field %q", sort.Field)
	}

	direction := domain.SortAsc
	if sort.Direction == domain.SortDesc {
		direction = domain.SortDesc
	}

	return fmt.Sprintf("ORDER BY %s %s, seq ASC", column, direction), nil
}
