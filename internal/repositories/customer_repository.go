package repositories

import (
	"context"
	"fmt"
	"strings"

	"crm-backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

const customerColumns = `id, user_id, first_name, last_name, email, phone, company_name,
         address_street, address_city, address_state, address_zip, notes, created_at, updated_at`

type CustomerRepository struct {
	DB *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{DB: db}
}

func scanCustomer(row interface{ Scan(...any) error }) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(&c.ID, &c.UserID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
		&c.CompanyName, &c.AddressStreet, &c.AddressCity, &c.AddressState, &c.AddressZip,
		&c.Notes, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO customers(user_id, first_name, last_name, email, phone, company_name,
             address_street, address_city, address_state, address_zip, notes)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
         RETURNING id, created_at, updated_at`,
		c.UserID, c.FirstName, c.LastName, c.Email, c.Phone, c.CompanyName,
		c.AddressStreet, c.AddressCity, c.AddressState, c.AddressZip, c.Notes,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *CustomerRepository) Get(ctx context.Context, id, userID int) (*models.Customer, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id=$1 AND user_id=$2`, id, userID)
	return scanCustomer(row)
}

func (r *CustomerRepository) List(ctx context.Context, userID int) ([]*models.Customer, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+customerColumns+` FROM customers
         WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// Search matches the query against name, email, phone and company.
func (r *CustomerRepository) Search(ctx context.Context, userID int, query string) ([]*models.Customer, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	rows, err := r.DB.Query(ctx,
		`SELECT `+customerColumns+` FROM customers
         WHERE user_id=$1 AND (
             lower(first_name || ' ' || last_name) LIKE $2
             OR lower(email) LIKE $2
             OR phone LIKE $2
             OR lower(company_name) LIKE $2)
         ORDER BY created_at DESC`, userID, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *CustomerRepository) Update(ctx context.Context, c *models.Customer) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE customers SET first_name=$1, last_name=$2, email=$3, phone=$4,
             company_name=$5, address_street=$6, address_city=$7, address_state=$8,
             address_zip=$9, notes=$10, updated_at=CURRENT_TIMESTAMP
         WHERE id=$11 AND user_id=$12`,
		c.FirstName, c.LastName, c.Email, c.Phone, c.CompanyName,
		c.AddressStreet, c.AddressCity, c.AddressState, c.AddressZip, c.Notes,
		c.ID, c.UserID)
	return err
}

func (r *CustomerRepository) Delete(ctx context.Context, id, userID int) error {
	_, err := r.DB.Exec(ctx,
		`DELETE FROM customers WHERE id=$1 AND user_id=$2`, id, userID)
	return err
}

const customerUpsertClause = `
         ON CONFLICT (user_id, lower(email)) WHERE email <> ''
         DO UPDATE SET
             first_name=EXCLUDED.first_name,
             last_name=EXCLUDED.last_name,
             phone=EXCLUDED.phone,
             company_name=EXCLUDED.company_name,
             address_street=EXCLUDED.address_street,
             address_city=EXCLUDED.address_city,
             address_state=EXCLUDED.address_state,
             address_zip=EXCLUDED.address_zip,
             notes=EXCLUDED.notes,
             updated_at=CURRENT_TIMESTAMP`

// BulkUpsert inserts customers in one multi-row statement, updating existing
// rows on a (user_id, email) conflict. Postgres rejects the whole statement
// if the same conflict key appears twice within it, so callers must
// deduplicate each batch first.
func (r *CustomerRepository) BulkUpsert(ctx context.Context, customers []*models.Customer) error {
	if len(customers) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO customers(user_id, first_name, last_name, email, phone, company_name,
             address_street, address_city, address_state, address_zip, notes) VALUES `)

	args := make([]any, 0, len(customers)*11)
	for i, c := range customers {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 11
		sb.WriteString("(")
		for j := 1; j <= 11; j++ {
			if j > 1 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", base+j)
		}
		sb.WriteString(")")
		args = append(args, c.UserID, c.FirstName, c.LastName, c.Email, c.Phone,
			c.CompanyName, c.AddressStreet, c.AddressCity, c.AddressState, c.AddressZip, c.Notes)
	}
	sb.WriteString(customerUpsertClause)

	_, err := r.DB.Exec(ctx, sb.String(), args...)
	return err
}

// Upsert inserts or updates a single customer keyed on (user_id, email).
func (r *CustomerRepository) Upsert(ctx context.Context, c *models.Customer) error {
	_, err := r.DB.Exec(ctx,
		`INSERT INTO customers(user_id, first_name, last_name, email, phone, company_name,
             address_street, address_city, address_state, address_zip, notes)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`+customerUpsertClause,
		c.UserID, c.FirstName, c.LastName, c.Email, c.Phone, c.CompanyName,
		c.AddressStreet, c.AddressCity, c.AddressState, c.AddressZip, c.Notes)
	return err
}
