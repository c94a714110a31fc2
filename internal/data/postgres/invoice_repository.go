// Package postgres provides PostgreSQL implementations of the domain
// repositories. Monetary columns store minor units alongside the ISO
// currency code so hydrated amounts are exact.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/afip-einvoicing/internal/domain/invoice"
	"github.com/afip-einvoicing/internal/domain/money"
	"github.com/afip-einvoicing/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// InvoiceRepository implements the invoice.Repository interface for PostgreSQL
type InvoiceRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewInvoiceRepository creates a new PostgreSQL invoice repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewInvoiceRepository(logger *slog.Logger, db *persistence.PostgresDB) invoice.Repository {
	return &InvoiceRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// NewInvoiceRepositoryWithQuerier creates a repository bound to an explicit
// querier. Used by tests.
func NewInvoiceRepositoryWithQuerier(logger *slog.Logger, querier persistence.Querier) invoice.Repository {
	return &InvoiceRepository{
		querier: querier,
		logger:  logger,
	}
}

const invoiceColumns = `
	id, point_of_sale, voucher_type, concept, document_type, document_number,
	receiver_vat_condition_id, voucher_date, currency,
	total_cents, untaxed_cents, net_cents, exempt_cents, other_tax_cents, vat_cents,
	currency_rate, vat_items, service_from, service_to, payment_due,
	voucher_number, cae, cae_expiry, status, created_at, updated_at`

// Save inserts a new invoice or updates an existing one. The database
// assigns the identifier on first save.
func (r *InvoiceRepository) Save(ctx context.Context, inv *invoice.Invoice) error {
	if inv.ID == 0 {
		return r.insert(ctx, inv)
	}
	return r.update(ctx, inv)
}

func (r *InvoiceRepository) insert(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		INSERT INTO invoices (
			point_of_sale, voucher_type, concept, document_type, document_number,
			receiver_vat_condition_id, voucher_date, currency,
			total_cents, untaxed_cents, net_cents, exempt_cents, other_tax_cents, vat_cents,
			currency_rate, vat_items, service_from, service_to, payment_due,
			voucher_number, cae, cae_expiry, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
		RETURNING id
	`

	vatItems, err := json.Marshal(inv.VatItems)
	if err != nil {
		return fmt.Errorf("failed to encode vat items: %w", err)
	}

	var id int64
	err = r.querier.QueryRow(ctx, query,
		inv.PointOfSale,
		inv.VoucherType,
		inv.Concept,
		inv.DocumentType,
		inv.DocumentNumber,
		inv.ReceiverVatConditionID,
		inv.VoucherDate.Time(),
		inv.Currency(),
		inv.Total.Cents(),
		inv.Untaxed.Cents(),
		inv.Net.Cents(),
		inv.Exempt.Cents(),
		inv.OtherTax.Cents(),
		inv.Vat.Cents(),
		inv.CurrencyRate,
		vatItems,
		nullableDate(inv.ServiceFrom),
		nullableDate(inv.ServiceTo),
		nullableDate(inv.PaymentDue),
		inv.VoucherNumber,
		inv.CAE,
		nullableDate(inv.CAEExpiry),
		string(inv.Status),
		inv.CreatedAt,
		inv.UpdatedAt,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert invoice", "error", err)
		return fmt.Errorf("failed to insert invoice: %w", err)
	}

	inv.AssignID(id)
	return nil
}

func (r *InvoiceRepository) update(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		UPDATE invoices
		SET voucher_number = $1, cae = $2, cae_expiry = $3, status = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := r.querier.Exec(ctx, query,
		inv.VoucherNumber,
		inv.CAE,
		nullableDate(inv.CAEExpiry),
		string(inv.Status),
		inv.UpdatedAt,
		inv.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update invoice", "id", inv.ID, "error", err)
		return fmt.Errorf("failed to update invoice: %w", err)
	}

	if result.RowsAffected() == 0 {
		return invoice.ErrInvoiceNotFound{ID: inv.ID}
	}

	return nil
}

// FindByID retrieves an invoice by its ID
func (r *InvoiceRepository) FindByID(ctx context.Context, id int64) (*invoice.Invoice, error) {
	query := `SELECT` + invoiceColumns + `
		FROM invoices
		WHERE id = $1
	`

	inv, err := r.scanInvoice(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, invoice.ErrInvoiceNotFound{ID: id}
		}
		r.logger.Error("Failed to get invoice", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	return inv, nil
}

// FindPending retrieves all draft invoices in creation order
func (r *InvoiceRepository) FindPending(ctx context.Context) ([]*invoice.Invoice, error) {
	query := `SELECT` + invoiceColumns + `
		FROM invoices
		WHERE status = $1
		ORDER BY id
	`

	rows, err := r.querier.Query(ctx, query, string(invoice.StatusDraft))
	if err != nil {
		r.logger.Error("Failed to query pending invoices", "error", err)
		return nil, fmt.Errorf("failed to query pending invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*invoice.Invoice
	for rows.Next() {
		inv, err := r.scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pending invoices: %w", err)
	}

	return invoices, nil
}

func (r *InvoiceRepository) scanInvoice(row pgx.Row) (*invoice.Invoice, error) {
	var (
		inv         invoice.Invoice
		currency    string
		totalCents  int64
		untaxed     int64
		net         int64
		exempt      int64
		otherTax    int64
		vat         int64
		vatItems    []byte
		voucherDate time.Time
		serviceFrom *time.Time
		serviceTo   *time.Time
		paymentDue  *time.Time
		caeExpiry   *time.Time
		status      string
	)

	err := row.Scan(
		&inv.ID,
		&inv.PointOfSale,
		&inv.VoucherType,
		&inv.Concept,
		&inv.DocumentType,
		&inv.DocumentNumber,
		&inv.ReceiverVatConditionID,
		&voucherDate,
		&currency,
		&totalCents,
		&untaxed,
		&net,
		&exempt,
		&otherTax,
		&vat,
		&inv.CurrencyRate,
		&vatItems,
		&serviceFrom,
		&serviceTo,
		&paymentDue,
		&inv.VoucherNumber,
		&inv.CAE,
		&caeExpiry,
		&status,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(vatItems) > 0 {
		if err := json.Unmarshal(vatItems, &inv.VatItems); err != nil {
			return nil, fmt.Errorf("failed to decode vat items: %w", err)
		}
	}

	inv.VoucherDate = invoice.DateFromTime(voucherDate)
	inv.ServiceFrom = dateFromNullable(serviceFrom)
	inv.ServiceTo = dateFromNullable(serviceTo)
	inv.PaymentDue = dateFromNullable(paymentDue)
	inv.CAEExpiry = dateFromNullable(caeExpiry)
	inv.Status = invoice.Status(status)

	inv.Total = money.FromCents(totalCents, currency)
	inv.Untaxed = money.FromCents(untaxed, currency)
	inv.Net = money.FromCents(net, currency)
	inv.Exempt = money.FromCents(exempt, currency)
	inv.OtherTax = money.FromCents(otherTax, currency)
	inv.Vat = money.FromCents(vat, currency)

	return &inv, nil
}

func nullableDate(d invoice.Date) *time.Time {
	if d.IsZero() {
		return nil
	}
	t := d.Time()
	return &t
}

func dateFromNullable(t *time.Time) invoice.Date {
	if t == nil {
		return invoice.Date{}
	}
	return invoice.DateFromTime(*t)
}
