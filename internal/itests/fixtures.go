package itests

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Fixture set the HTTP tests assert against. Explicit ids, sequences
// bumped afterwards so created rows never collide with seeded ones.
//
// Totals worth keeping in mind:
//   order 1 (ALFKI, shipped):  18*12 + 19*10*0.95 = 396.50, freight 29.46 -> 425.96
//   order 2 (ALFKI, overdue):  10*5 = 50.00, freight 12.50 -> 62.50
//   order 3 (ANATR, overdue):  22*9 = 198.00, freight 13.97 -> 211.97
// ALFKI spend 446.50 over 2 orders, ANATR 198.00 over 1, BONAP none.
var fixtureStatements = []string{
	`INSERT INTO categories (category_id, category_name, description) VALUES
		(1, 'Beverages', 'Soft drinks, coffees, teas, beers, and ales'),
		(2, 'Condiments', 'Sweet and savory sauces, relishes, spreads, and seasonings')`,
	`SELECT setval('categories_category_id_seq', 2)`,

	`INSERT INTO suppliers (supplier_id, company_name, contact_name, city, country) VALUES
		(1, 'Exotic Liquids', 'Charlotte Cooper', 'London', 'UK'),
		(2, 'New Orleans Cajun Delights', 'Shelley Burke', 'New Orleans', 'USA')`,
	`SELECT setval('suppliers_supplier_id_seq', 2)`,

	`INSERT INTO products (product_id, product_name, supplier_id, category_id, quantity_per_unit,
		unit_price, units_in_stock, units_on_order, reorder_level, discontinued) VALUES
		(1, 'Chai', 1, 1, '10 boxes x 20 bags', 18.00, 39, 0, 10, FALSE),
		(2, 'Chang', 1, 1, '24 - 12 oz bottles', 19.00, 17, 40, 25, FALSE),
		(3, 'Aniseed Syrup', 1, 2, '12 - 550 ml bottles', 10.00, 13, 70, 25, FALSE),
		(4, 'Chef Anton''s Cajun Seasoning', 2, 2, '48 - 6 oz jars', 22.00, 53, 0, 0, FALSE),
		(5, 'Mishi Kobe Niku', 1, 1, '18 - 500 g pkgs.', 97.00, 29, 0, 0, TRUE),
		(6, 'Ikura', 1, 1, '12 - 200 ml jars', 31.00, 0, 0, 0, FALSE)`,
	`SELECT setval('products_product_id_seq', 6)`,

	`INSERT INTO customers (customer_id, company_name, contact_name, city, country) VALUES
		('ALFKI', 'Alfreds Futterkiste', 'Maria Anders', 'Berlin', 'Germany'),
		('ANATR', 'Ana Trujillo Emparedados y helados', 'Ana Trujillo', 'México D.F.', 'Mexico'),
		('BONAP', 'Bon app''', 'Laurence Lebihan', 'Marseille', 'France')`,

	`INSERT INTO employees (employee_id, last_name, first_name, title, birth_date, hire_date,
		city, country, reports_to) VALUES
		(1, 'Fuller', 'Andrew', 'Vice President, Sales', '1952-02-19', '1992-08-14', 'Tacoma', 'USA', NULL),
		(2, 'Davolio', 'Nancy', 'Sales Representative', '1948-12-08', '1992-05-01', 'Seattle', 'USA', 1),
		(3, 'Leverling', 'Janet', 'Sales Representative', '1963-08-30', '1992-04-01', 'Kirkland', 'USA', 1)`,
	`SELECT setval('employees_employee_id_seq', 3)`,

	`INSERT INTO shippers (shipper_id, company_name, phone) VALUES
		(1, 'Speedy Express', '(503) 555-9831'),
		(2, 'United Package', '(503) 555-3199')`,
	`SELECT setval('shippers_shipper_id_seq', 2)`,

	`INSERT INTO orders (order_id, customer_id, employee_id, order_date, required_date, shipped_date,
		ship_via, freight, ship_name, ship_city, ship_country) VALUES
		(1, 'ALFKI', 2, '1996-07-04', '1996-08-01', '1996-07-16', 1, 29.46, 'Alfreds Futterkiste', 'Berlin', 'Germany'),
		(2, 'ALFKI', 2, '1997-03-10', '1997-04-07', NULL, 2, 12.50, 'Alfreds Futterkiste', 'Berlin', 'Germany'),
		(3, 'ANATR', 3, '1996-09-18', '1996-10-16', NULL, 2, 13.97, 'Ana Trujillo Emparedados y helados', 'México D.F.', 'Mexico')`,
	`SELECT setval('orders_order_id_seq', 3)`,

	`INSERT INTO order_details (order_id, product_id, unit_price, quantity, discount) VALUES
		(1, 1, 18.00, 12, 0),
		(1, 2, 19.00, 10, 0.05),
		(2, 3, 10.00, 5, 0),
		(3, 4, 22.00, 9, 0)`,
}

func seedFixtures(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range fixtureStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("seed fixture: %w\n%s", err, stmt)
		}
	}
	return nil
}
