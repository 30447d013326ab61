package memory

import (
	"fmt"
	"sort"
	"strings"

	"mealbox-be/internal/repository/specification"
)

const dateLayout = "2006-01-02"

// query is the part of a specification list that is not a row filter.
type query struct {
	orders []specification.OrderBy
	page   *specification.Pagination
}

// splitSpecs separates ordering and paging from filters. ForUpdate is a no-op
// here because transactions are already serialized.
func splitSpecs(specs []specification.Specification) ([]specification.Specification, query) {
	var filters []specification.Specification
	var q query
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.OrderBy:
			q.orders = append(q.orders, s)
		case specification.Pagination:
			p := s
			q.page = &p
		case specification.ForUpdate:
		default:
			filters = append(filters, spec)
		}
	}
	return filters, q
}

func unsupported(spec specification.Specification) error {
	return fmt.Errorf("memory: unsupported specification %T", spec)
}

// filterRows keeps the rows that match every filter.
func filterRows[T any](rows []T, filters []specification.Specification, match func(T, specification.Specification) (bool, error)) ([]T, error) {
	out := rows[:0:0]
	for _, row := range rows {
		keep := true
		for _, f := range filters {
			ok, err := match(row, f)
			if err != nil {
				return nil, err
			}
			if !ok {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	return out, nil
}

// applyQuery sorts and pages rows. compare returns false for fields it does
// not know about.
func applyQuery[T any](rows []T, q query, compare func(a, b T, field string) (int, bool)) ([]T, error) {
	for _, o := range q.orders {
		field := o.Field
		if i := strings.LastIndex(field, "."); i >= 0 {
			field = field[i+1:]
		}
		var a, b T
		if _, ok := compare(a, b, field); !ok {
			return nil, fmt.Errorf("memory: cannot order by %q", o.Field)
		}
	}
	if len(q.orders) > 0 {
		sort.SliceStable(rows, func(i, j int) bool {
			for _, o := range q.orders {
				field := o.Field
				if k := strings.LastIndex(field, "."); k >= 0 {
					field = field[k+1:]
				}
				c, _ := compare(rows[i], rows[j], field)
				if c == 0 {
					continue
				}
				if o.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}
	if q.page != nil {
		start := q.page.Offset
		if start > len(rows) {
			start = len(rows)
		}
		rows = rows[start:]
		if q.page.Limit > 0 && q.page.Limit < len(rows) {
			rows = rows[:q.page.Limit]
		}
	}
	return rows, nil
}
