package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"northwind/internal/apperr"
	"northwind/internal/model"
	"northwind/internal/query"
	"northwind/internal/schema"
)

type EmployeeRepo struct {
	db   DB
	pool *pgxpool.Pool
	ent  *schema.Entity
}

var employeeColumns = []string{
	"employee_id", "last_name", "first_name", "title", "title_of_courtesy",
	"birth_date", "hire_date", "address", "city", "region", "postal_code",
	"country", "home_phone", "extension", "notes", "reports_to", "photo_path",
}

func scanEmployeeRow(row pgx.Row) (model.Employee, error) {
	var e model.Employee
	err := row.Scan(&e.EmployeeID, &e.LastName, &e.FirstName, &e.Title,
		&e.TitleOfCourtesy, &e.BirthDate, &e.HireDate, &e.Address, &e.City,
		&e.Region, &e.PostalCode, &e.Country, &e.HomePhone, &e.Extension,
		&e.Notes, &e.ReportsTo, &e.PhotoPath)
	return e, err
}

func scanEmployees(rows pgx.Rows) ([]model.Employee, error) {
	items := make([]model.Employee, 0, 16)
	for rows.Next() {
		e, err := scanEmployeeRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (r *EmployeeRepo) List(ctx context.Context, s *query.Spec) (query.Page[model.Employee], error) {
	return listPage(ctx, r.db, s, employeeColumns, scanEmployees)
}

func (r *EmployeeRepo) Get(ctx context.Context, id int) (model.Employee, error) {
	return getByID(ctx, r.db, r.ent, id, employeeColumns, scanEmployeeRow)
}

func (r *EmployeeRepo) Create(ctx context.Context, e *model.Employee) error {
	sql, args, err := psql.Insert(r.ent.Table).
		Columns(employeeColumns[1:]...).
		Values(e.LastName, e.FirstName, e.Title, e.TitleOfCourtesy, e.BirthDate,
			e.HireDate, e.Address, e.City, e.Region, e.PostalCode, e.Country,
			e.HomePhone, e.Extension, e.Notes, e.ReportsTo, e.PhotoPath).
		Suffix(returning(employeeColumns)).
		ToSql()
	if err != nil {
		return apperr.Storef(err, "build employee insert")
	}
	created, err := scanEmployeeRow(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return mapPgError(err)
	}
	*e = created
	return nil
}

func (r *EmployeeRepo) Update(ctx context.Context, id int, set map[string]any) (model.Employee, error) {
	var zero model.Employee
	sql, args, err := psql.Update(r.ent.Table).
		SetMap(set).
		Where(squirrel.Eq{r.ent.PrimaryKey: id}).
		Suffix(returning(employeeColumns)).
		ToSql()
	if err != nil {
		return zero, apperr.Storef(err, "build employee update")
	}
	updated, err := scanEmployeeRow(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, apperr.NotFound("employee %d not found", id)
		}
		return zero, mapPgError(err)
	}
	return updated, nil
}

// Delete detaches the employee's orders and subordinates under force,
// per the declared dependents.
func (r *EmployeeRepo) Delete(ctx context.Context, id int, force bool) error {
	return deleteWithPolicy(ctx, r.pool, r.ent, id, force)
}

// ByIDs batch-loads employees for manager include resolution.
func (r *EmployeeRepo) ByIDs(ctx context.Context, ids []int) (map[int]model.Employee, error) {
	out := make(map[int]model.Employee, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	sql, args, err := psql.Select(employeeColumns...).
		From(r.ent.Table).
		Where(squirrel.Eq{r.ent.PrimaryKey: ids}).
		ToSql()
	if err != nil {
		return nil, apperr.Storef(err, "build employees by ids")
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()
	for rows.Next() {
		e, err := scanEmployeeRow(rows)
		if err != nil {
			return nil, mapPgError(err)
		}
		out[e.EmployeeID] = e
	}
	return out, rows.Err()
}

// Hierarchy loads every employee and assembles the manager forest.
// A reports_to cycle in the data is reported as an integrity error
// instead of recursing forever.
func (r *EmployeeRepo) Hierarchy(ctx context.Context) ([]*model.Employee, error) {
	sql, args, err := psql.Select(employeeColumns...).
		From(r.ent.Table).
		OrderBy(r.ent.PrimaryKey + " ASC").
		ToSql()
	if err != nil {
		return nil, apperr.Storef(err, "build employee hierarchy query")
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()
	items, err := scanEmployees(rows)
	if err != nil {
		return nil, mapPgError(err)
	}
	return buildHierarchy(items)
}

// buildHierarchy links employees to their managers without recursion.
// Roots are employees with no manager (or a manager id that no longer
// exists). Any employee unreachable from a root sits on a reports_to
// cycle, which is corrupt data, not a valid tree.
func buildHierarchy(items []model.Employee) ([]*model.Employee, error) {
	nodes := make(map[int]*model.Employee, len(items))
	for i := range items {
		e := items[i]
		e.Reports = nil
		nodes[e.EmployeeID] = &e
	}

	var roots []*model.Employee
	for i := range items {
		node := nodes[items[i].EmployeeID]
		if node.ReportsTo == nil {
			roots = append(roots, node)
			continue
		}
		mgr, ok := nodes[*node.ReportsTo]
		if !ok {
			roots = append(roots, node)
			continue
		}
		mgr.Reports = append(mgr.Reports, node)
	}

	// обход от корней; всё непосещённое — цикл
	visited := make(map[int]bool, len(nodes))
	stack := append([]*model.Employee(nil), roots...)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[node.EmployeeID] {
			continue
		}
		visited[node.EmployeeID] = true
		stack = append(stack, node.Reports...)
	}

	if len(visited) != len(nodes) {
		return nil, apperr.DataIntegrity("employee hierarchy contains a reports_to cycle: %s", describeCycle(nodes, visited))
	}
	return roots, nil
}

// describeCycle walks the manager chain from the smallest unvisited id
// until it repeats, e.g. "5 -> 9 -> 5".
func describeCycle(nodes map[int]*model.Employee, visited map[int]bool) string {
	var start int
	for id := range nodes {
		if !visited[id] && (start == 0 || id < start) {
			start = id
		}
	}
	var path []string
	seen := map[int]bool{}
	id := start
	for !seen[id] {
		seen[id] = true
		path = append(path, fmt.Sprint(id))
		node := nodes[id]
		if node.ReportsTo == nil {
			break
		}
		id = *node.ReportsTo
	}
	path = append(path, fmt.Sprint(id))
	return strings.Join(path, " -> ")
}
