/*
Package sqlite provides a SQLite-backed implementation of crm.Store.

PURPOSE:
  Persists the CRM model (partners, cases, settlement batches, expenses,
  tax invoices) in a single SQLite file. The same query patterns apply to
  PostgreSQL; only minor dialect differences.

KEY TABLES:
  partners:           Partner rows, commission rules + settlement config as JSON
  cases:              Lead/contract records, canonical deposit history as JSON
  settlement_batches: One row per partner per settlement week, lines as JSON
  expenses:           Dated office expenses
  tax_invoices:       Issued invoices with the VAT split materialized

SOFT LIFECYCLE:
  Cases are never deleted; closed_at marks retirement and list queries skip
  closed cases unless asked. Batch corrections happen by rebuilding a draft,
  never by editing a confirmed batch.

MONEY COLUMNS:
  Amounts are stored as TEXT (decimal string), matching the decimal types in
  the model; REAL would reintroduce the float drift the engine avoids.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. SQLite opens in WAL mode so readers
  don't block.

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper migration
  tool with versioned migrations.

SEE ALSO:
  - crm/store.go: Interface definition
  - crm/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/9981mark-hub/leadmaster-crm-sub000/crm"
	"github.com/9981mark-hub/leadmaster-crm-sub000/factory"
)

// Store implements crm.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ crm.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Partners (commission rules + settlement config stored as JSON)
	CREATE TABLE IF NOT EXISTS partners (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		manager TEXT,
		phone TEXT,
		config_json TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	-- Cases (soft lifecycle: closed_at marks retirement, never DELETE)
	CREATE TABLE IF NOT EXISTS cases (
		id TEXT PRIMARY KEY,
		partner_id TEXT NOT NULL,
		client_name TEXT NOT NULL,
		phone TEXT,
		status TEXT NOT NULL,
		contract_at TEXT,
		contract_fee TEXT NOT NULL DEFAULT '0',
		deposits_json TEXT NOT NULL DEFAULT '[]',
		reminders_json TEXT NOT NULL DEFAULT '[]',
		memo TEXT,
		created_at TEXT NOT NULL,
		closed_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_cases_partner
		ON cases(partner_id);
	CREATE INDEX IF NOT EXISTS idx_cases_status
		ON cases(status);
	CREATE INDEX IF NOT EXISTS idx_cases_partner_status
		ON cases(partner_id, status);

	-- Settlement batches (one per partner per settlement week)
	CREATE TABLE IF NOT EXISTS settlement_batches (
		id TEXT PRIMARY KEY,
		partner_id TEXT NOT NULL,
		cutoff_date TEXT NOT NULL,
		payout_date TEXT NOT NULL,
		lines_json TEXT NOT NULL DEFAULT '[]',
		total TEXT NOT NULL DEFAULT '0',
		status TEXT NOT NULL DEFAULT 'draft',
		created_at TEXT NOT NULL,
		confirmed_at TEXT,
		paid_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_batches_partner
		ON settlement_batches(partner_id);
	CREATE INDEX IF NOT EXISTS idx_batches_status
		ON settlement_batches(status);

	-- One confirmed batch per partner per cutoff; drafts can coexist
	CREATE UNIQUE INDEX IF NOT EXISTS idx_batches_partner_cutoff
		ON settlement_batches(partner_id, cutoff_date)
		WHERE status != 'draft';

	-- Expenses
	CREATE TABLE IF NOT EXISTS expenses (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		category TEXT,
		memo TEXT,
		amount TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_expenses_date
		ON expenses(date);

	-- Tax invoices (VAT split materialized at issue time)
	CREATE TABLE IF NOT EXISTS tax_invoices (
		id TEXT PRIMARY KEY,
		case_id TEXT NOT NULL,
		client_name TEXT,
		issued_at TEXT NOT NULL,
		gross TEXT NOT NULL,
		supply TEXT NOT NULL,
		vat TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_invoices_case
		ON tax_invoices(case_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PARTNERS
// =============================================================================

// SavePartner upserts a partner. Rules and settlement config serialize into
// config_json via the factory, so hand-edited documents stay readable.
func (s *Store) SavePartner(ctx context.Context, p crm.Partner) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	configJSON, err := factory.ToJSON(p.CommissionRules, p.SettlementConfig)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO partners (id, name, manager, phone, config_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			manager = excluded.manager,
			phone = excluded.phone,
			config_json = excluded.config_json
	`
	_, err = s.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Manager, p.Phone, configJSON, dateString(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save partner: %w", err)
	}
	return nil
}

func (s *Store) GetPartner(ctx context.Context, id crm.PartnerID) (*crm.Partner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, manager, phone, config_json, created_at
		FROM partners WHERE id = ?`, id)

	p, err := scanPartner(row)
	if err == sql.ErrNoRows {
		return nil, crm.ErrPartnerNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) ListPartners(ctx context.Context) ([]crm.Partner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, manager, phone, config_json, created_at
		FROM partners ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}
	defer rows.Close()

	var out []crm.Partner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// rowScanner lets scan helpers accept both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPartner(row rowScanner) (*crm.Partner, error) {
	var p crm.Partner
	var manager, phone, configJSON, createdAt sql.NullString

	if err := row.Scan(&p.ID, &p.Name, &manager, &phone, &configJSON, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan partner: %w", err)
	}

	p.Manager = manager.String
	p.Phone = phone.String
	p.CreatedAt = parseDateColumn(createdAt)

	rules, cfg, err := factory.ParsePartnerConfig(configJSON.String)
	if err != nil {
		return nil, fmt.Errorf("partner %s: %w", p.ID, err)
	}
	p.CommissionRules = rules
	p.SettlementConfig = cfg

	return &p, nil
}

// =============================================================================
// CASES
// =============================================================================

func (s *Store) SaveCase(ctx context.Context, c crm.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	depositsJSON, err := json.Marshal(depositsToJSON(c.DepositHistory))
	if err != nil {
		return fmt.Errorf("failed to serialize deposits: %w", err)
	}
	remindersJSON, err := json.Marshal(remindersToJSON(c.Reminders))
	if err != nil {
		return fmt.Errorf("failed to serialize reminders: %w", err)
	}

	query := `
		INSERT INTO cases
		(id, partner_id, client_name, phone, status, contract_at, contract_fee,
		 deposits_json, reminders_json, memo, created_at, closed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			partner_id = excluded.partner_id,
			client_name = excluded.client_name,
			phone = excluded.phone,
			status = excluded.status,
			contract_at = excluded.contract_at,
			contract_fee = excluded.contract_fee,
			deposits_json = excluded.deposits_json,
			reminders_json = excluded.reminders_json,
			memo = excluded.memo,
			closed_at = excluded.closed_at
	`
	_, err = s.db.ExecContext(ctx, query,
		c.ID, c.PartnerID, c.ClientName, c.Phone, c.Status,
		nullDate(c.ContractAt), c.ContractFee.String(),
		string(depositsJSON), string(remindersJSON), c.Memo,
		dateString(c.CreatedAt), nullDate(c.ClosedAt))
	if err != nil {
		return fmt.Errorf("failed to save case: %w", err)
	}
	return nil
}

func (s *Store) GetCase(ctx context.Context, id crm.CaseID) (*crm.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, partner_id, client_name, phone, status, contract_at, contract_fee,
		       deposits_json, reminders_json, memo, created_at, closed_at
		FROM cases WHERE id = ?`, id)

	c, err := scanCase(row)
	if err == sql.ErrNoRows {
		return nil, crm.ErrCaseNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) ListCases(ctx context.Context, filter crm.CaseFilter) ([]crm.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, partner_id, client_name, phone, status, contract_at, contract_fee,
		       deposits_json, reminders_json, memo, created_at, closed_at
		FROM cases`
	var conds []string
	var args []any
	if filter.PartnerID != "" {
		conds = append(conds, "partner_id = ?")
		args = append(args, filter.PartnerID)
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, filter.Status)
	}
	if !filter.IncludeClosed {
		conds = append(conds, "closed_at IS NULL")
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	defer rows.Close()

	var out []crm.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func scanCase(row rowScanner) (*crm.Case, error) {
	var c crm.Case
	var phone, contractAt, memo, createdAt, closedAt sql.NullString
	var contractFee, depositsJSON, remindersJSON string

	err := row.Scan(&c.ID, &c.PartnerID, &c.ClientName, &phone, &c.Status,
		&contractAt, &contractFee, &depositsJSON, &remindersJSON,
		&memo, &createdAt, &closedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan case: %w", err)
	}

	c.Phone = phone.String
	c.Memo = memo.String
	c.ContractAt = parseDateColumn(contractAt)
	c.CreatedAt = parseDateColumn(createdAt)
	c.ClosedAt = parseDateColumn(closedAt)

	fee, err := decimal.NewFromString(contractFee)
	if err != nil {
		return nil, fmt.Errorf("case %s: bad contract_fee %q: %w", c.ID, contractFee, err)
	}
	c.ContractFee = fee

	var dj []depositJSON
	if err := json.Unmarshal([]byte(depositsJSON), &dj); err != nil {
		return nil, fmt.Errorf("case %s: bad deposits_json: %w", c.ID, err)
	}
	c.DepositHistory, err = depositsFromJSON(dj)
	if err != nil {
		return nil, fmt.Errorf("case %s: %w", c.ID, err)
	}

	var rj []reminderJSON
	if err := json.Unmarshal([]byte(remindersJSON), &rj); err != nil {
		return nil, fmt.Errorf("case %s: bad reminders_json: %w", c.ID, err)
	}
	c.Reminders = remindersFromJSON(rj)

	return &c, nil
}

// =============================================================================
// SETTLEMENT BATCHES
// =============================================================================

func (s *Store) SaveBatch(ctx context.Context, b crm.SettlementBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	linesJSON, err := json.Marshal(linesToJSON(b.Lines))
	if err != nil {
		return fmt.Errorf("failed to serialize batch lines: %w", err)
	}

	query := `
		INSERT INTO settlement_batches
		(id, partner_id, cutoff_date, payout_date, lines_json, total, status,
		 created_at, confirmed_at, paid_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			lines_json = excluded.lines_json,
			total = excluded.total,
			status = excluded.status,
			confirmed_at = excluded.confirmed_at,
			paid_at = excluded.paid_at
	`
	_, err = s.db.ExecContext(ctx, query,
		b.ID, b.PartnerID, dateString(b.CutoffDate), dateString(b.PayoutDate),
		string(linesJSON), b.Total.String(), b.Status,
		dateString(b.CreatedAt), nullDate(b.ConfirmedAt), nullDate(b.PaidAt))
	if err != nil {
		if isUniqueConstraintError(err) {
			return crm.ErrDuplicateID
		}
		return fmt.Errorf("failed to save batch: %w", err)
	}
	return nil
}

func (s *Store) GetBatch(ctx context.Context, id crm.BatchID) (*crm.SettlementBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, partner_id, cutoff_date, payout_date, lines_json, total, status,
		       created_at, confirmed_at, paid_at
		FROM settlement_batches WHERE id = ?`, id)

	b, err := scanBatch(row)
	if err == sql.ErrNoRows {
		return nil, crm.ErrBatchNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Store) ListBatches(ctx context.Context, partnerID crm.PartnerID) ([]crm.SettlementBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, partner_id, cutoff_date, payout_date, lines_json, total, status,
		       created_at, confirmed_at, paid_at
		FROM settlement_batches`
	var args []any
	if partnerID != "" {
		query += " WHERE partner_id = ?"
		args = append(args, partnerID)
	}
	query += " ORDER BY cutoff_date, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	defer rows.Close()

	var out []crm.SettlementBatch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (s *Store) UpdateBatchStatus(ctx context.Context, id crm.BatchID, status crm.BatchStatus, at crm.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current string
	err := s.db.QueryRowContext(ctx,
		"SELECT status FROM settlement_batches WHERE id = ?", id).Scan(&current)
	if err == sql.ErrNoRows {
		return crm.ErrBatchNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load batch status: %w", err)
	}

	var query string
	switch status {
	case crm.BatchPaid:
		query = "UPDATE settlement_batches SET status = ?, paid_at = ? WHERE id = ?"
	default:
		if status == crm.BatchConfirmed && crm.BatchStatus(current) != crm.BatchDraft {
			return crm.ErrBatchNotDraft
		}
		query = "UPDATE settlement_batches SET status = ?, confirmed_at = ? WHERE id = ?"
	}

	if _, err := s.db.ExecContext(ctx, query, status, dateString(at), id); err != nil {
		if isUniqueConstraintError(err) {
			return crm.ErrDuplicateID
		}
		return fmt.Errorf("failed to update batch status: %w", err)
	}
	return nil
}

func scanBatch(row rowScanner) (*crm.SettlementBatch, error) {
	var b crm.SettlementBatch
	var cutoff, payout, createdAt, linesJSON, total string
	var confirmedAt, paidAt sql.NullString

	err := row.Scan(&b.ID, &b.PartnerID, &cutoff, &payout, &linesJSON, &total,
		&b.Status, &createdAt, &confirmedAt, &paidAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan batch: %w", err)
	}

	b.CutoffDate, _ = crm.ParseDate(cutoff)
	b.PayoutDate, _ = crm.ParseDate(payout)
	b.CreatedAt, _ = crm.ParseDate(createdAt)
	b.ConfirmedAt = parseDateColumn(confirmedAt)
	b.PaidAt = parseDateColumn(paidAt)

	t, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("batch %s: bad total %q: %w", b.ID, total, err)
	}
	b.Total = t

	var lj []lineJSON
	if err := json.Unmarshal([]byte(linesJSON), &lj); err != nil {
		return nil, fmt.Errorf("batch %s: bad lines_json: %w", b.ID, err)
	}
	b.Lines, err = linesFromJSON(lj)
	if err != nil {
		return nil, fmt.Errorf("batch %s: %w", b.ID, err)
	}

	return &b, nil
}

// =============================================================================
// EXPENSES
// =============================================================================

func (s *Store) SaveExpense(ctx context.Context, e crm.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO expenses (id, date, category, memo, amount)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			category = excluded.category,
			memo = excluded.memo,
			amount = excluded.amount
	`
	_, err := s.db.ExecContext(ctx, query,
		e.ID, dateString(e.Date), e.Category, e.Memo, e.Amount.String())
	if err != nil {
		return fmt.Errorf("failed to save expense: %w", err)
	}
	return nil
}

func (s *Store) ListExpenses(ctx context.Context, filter crm.ExpenseFilter) ([]crm.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, date, category, memo, amount FROM expenses"
	var args []any
	if filter.Month != "" {
		// Dates are stored as yyyy-MM-dd, so a month prefix match works.
		query += " WHERE date LIKE ?"
		args = append(args, filter.Month+"%")
	}
	query += " ORDER BY date, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var out []crm.Expense
	for rows.Next() {
		var e crm.Expense
		var date, amount string
		var category, memo sql.NullString
		if err := rows.Scan(&e.ID, &date, &category, &memo, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.Date, _ = crm.ParseDate(date)
		e.Category = category.String
		e.Memo = memo.String
		a, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("expense %s: bad amount %q: %w", e.ID, amount, err)
		}
		e.Amount = a
		out = append(out, e)
	}
	return out, rows.Err()
}

// =============================================================================
// TAX INVOICES
// =============================================================================

func (s *Store) SaveInvoice(ctx context.Context, inv crm.TaxInvoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO tax_invoices (id, case_id, client_name, issued_at, gross, supply, vat)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		inv.ID, inv.CaseID, inv.ClientName, dateString(inv.IssuedAt),
		inv.Gross.String(), inv.Supply.String(), inv.VAT.String())
	if err != nil {
		if isUniqueConstraintError(err) {
			return crm.ErrDuplicateID
		}
		return fmt.Errorf("failed to save invoice: %w", err)
	}
	return nil
}

func (s *Store) ListInvoices(ctx context.Context) ([]crm.TaxInvoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, case_id, client_name, issued_at, gross, supply, vat
		FROM tax_invoices ORDER BY issued_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var out []crm.TaxInvoice
	for rows.Next() {
		var inv crm.TaxInvoice
		var issuedAt, gross, supply, vat string
		var clientName sql.NullString
		if err := rows.Scan(&inv.ID, &inv.CaseID, &clientName, &issuedAt, &gross, &supply, &vat); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		inv.ClientName = clientName.String
		inv.IssuedAt, _ = crm.ParseDate(issuedAt)

		var err error
		if inv.Gross, err = decimal.NewFromString(gross); err != nil {
			return nil, fmt.Errorf("invoice %s: bad gross %q: %w", inv.ID, gross, err)
		}
		if inv.Supply, err = decimal.NewFromString(supply); err != nil {
			return nil, fmt.Errorf("invoice %s: bad supply %q: %w", inv.ID, supply, err)
		}
		if inv.VAT, err = decimal.NewFromString(vat); err != nil {
			return nil, fmt.Errorf("invoice %s: bad vat %q: %w", inv.ID, vat, err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
