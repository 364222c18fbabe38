// Package storage persists users, categories and transactions behind a
// single Repository backed by database/sql. Two backends are supported:
// SQLite (development) and PostgreSQL (production); everything
// store-specific lives behind the Dialect interface.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alessandrolsdev/controle-financeiro-api/internal/core"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Repository struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects to the database selected by the URL, runs the embedded
// migrations and returns a ready Repository. Requests draw connections from
// the database/sql pool for their duration; there is no session state
// beyond that.
func Open(databaseURL string) (*Repository, error) {
	dialect := DialectFor(databaseURL)

	dsn := databaseURL
	if dialect.Name() == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(databaseURL), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
		if !strings.HasPrefix(dsn, "file:") {
			dsn = "file:" + dsn
		}
		// Referential integrity is enforced per connection in SQLite.
		dsn += "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect.Name(), err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dsn, dialect); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("Database ready", "dialect", dialect.Name())

	return &Repository{db: db, dialect: dialect}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Dialect exposes the active dialect, chiefly for logging.
func (r *Repository) Dialect() Dialect { return r.dialect }

// q rebinds a ?-placeholder query for the active dialect.
func (r *Repository) q(query string) string { return r.dialect.Rebind(query) }

// scannedTime accepts whatever the driver hands back for a timestamp
// column: time.Time from pgx, text from SQLite.
type scannedTime struct {
	T     time.Time
	Valid bool
}

func (s *scannedTime) Scan(src any) error {
	s.T, s.Valid = time.Time{}, false
	switch v := src.(type) {
	case nil:
		return nil
	case time.Time:
		s.T, s.Valid = v.UTC(), true
		return nil
	case string:
		return s.parse(v)
	case []byte:
		return s.parse(string(v))
	}
	return fmt.Errorf("cannot scan %T into time", src)
}

func (s *scannedTime) parse(v string) error {
	for _, layout := range []string{
		sqliteTimeLayout,
		"2006-01-02 15:04:05.999999999-07:00",
		time.RFC3339Nano,
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, v); err == nil {
			s.T, s.Valid = t.UTC(), true
			return nil
		}
	}
	return fmt.Errorf("cannot parse time %q", v)
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// --- users ---

// UserUpdate is a sparse profile update: only non-nil fields are applied.
type UserUpdate struct {
	Username  *string
	FullName  *string
	Email     *string
	BirthDate *time.Time
	AvatarURL *string
}

// CreateUser inserts a new user and fills in its ID. A duplicate username
// or email surfaces as core.ErrDuplicate.
func (r *Repository) CreateUser(ctx context.Context, u *core.User) error {
	u.CreatedAt = time.Now().UTC().Truncate(time.Second)
	err := r.db.QueryRowContext(ctx, r.q(`
		INSERT INTO usuarios (nome_usuario, senha_hash, nome_completo, email, data_nascimento, avatar_url, criado_em)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`), u.Username, u.PasswordHash, nullStr(u.FullName), nullStr(u.Email),
		r.timeOrNil(u.BirthDate), nullStr(u.AvatarURL), r.dialect.TimeValue(u.CreatedAt),
	).Scan(&u.ID)
	if err != nil {
		if r.dialect.IsUniqueViolation(err) {
			return core.ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUserByUsername loads a user by its unique username.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*core.User, error) {
	return r.getUser(ctx, "nome_usuario = ?", username)
}

// GetUserByID loads a user by primary key.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*core.User, error) {
	return r.getUser(ctx, "id = ?", id)
}

func (r *Repository) getUser(ctx context.Context, where string, arg any) (*core.User, error) {
	var (
		u         core.User
		fullName  sql.NullString
		email     sql.NullString
		birthDate scannedTime
		avatarURL sql.NullString
		createdAt scannedTime
	)
	err := r.db.QueryRowContext(ctx, r.q(`
		SELECT id, nome_usuario, senha_hash, nome_completo, email, data_nascimento, avatar_url, criado_em
		FROM usuarios
		WHERE `+where),
		arg,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &fullName, &email, &birthDate, &avatarURL, &createdAt)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.FullName = fullName.String
	u.Email = email.String
	u.AvatarURL = avatarURL.String
	if birthDate.Valid {
		u.BirthDate = birthDate.T
	}
	if createdAt.Valid {
		u.CreatedAt = createdAt.T
	}
	return &u, nil
}

// UpdateUser applies a sparse profile update and returns the fresh row.
// Fields left nil keep their stored value.
func (r *Repository) UpdateUser(ctx context.Context, id int64, upd UserUpdate) (*core.User, error) {
	var (
		sets []string
		args []any
	)
	if upd.Username != nil {
		sets = append(sets, "nome_usuario = ?")
		args = append(args, *upd.Username)
	}
	if upd.FullName != nil {
		sets = append(sets, "nome_completo = ?")
		args = append(args, nullStr(*upd.FullName))
	}
	if upd.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, nullStr(*upd.Email))
	}
	if upd.BirthDate != nil {
		sets = append(sets, "data_nascimento = ?")
		args = append(args, r.dialect.TimeValue(*upd.BirthDate))
	}
	if upd.AvatarURL != nil {
		sets = append(sets, "avatar_url = ?")
		args = append(args, nullStr(*upd.AvatarURL))
	}
	if len(sets) == 0 {
		return r.GetUserByID(ctx, id)
	}
	args = append(args, id)

	res, err := r.db.ExecContext(ctx,
		r.q("UPDATE usuarios SET "+strings.Join(sets, ", ")+" WHERE id = ?"), args...)
	if err != nil {
		if r.dialect.IsUniqueViolation(err) {
			return nil, core.ErrDuplicate
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, core.ErrNotFound
	}
	return r.GetUserByID(ctx, id)
}

// UpdatePassword replaces the stored hash. Verification of the current
// password happens in the service layer before this is called.
func (r *Repository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	res, err := r.db.ExecContext(ctx,
		r.q("UPDATE usuarios SET senha_hash = ? WHERE id = ?"), hash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *Repository) timeOrNil(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return r.dialect.TimeValue(t)
}

// --- categories ---

// CategoryUpdate is a sparse category update: only non-nil fields are
// applied.
type CategoryUpdate struct {
	Name  *string
	Type  *core.CategoryType
	Color *string
}

// CreateCategory inserts a category, applying the default color when none
// is given. A duplicate name surfaces as core.ErrDuplicate.
func (r *Repository) CreateCategory(ctx context.Context, c *core.Category) error {
	if c.Color == "" {
		c.Color = core.DefaultCategoryColor
	}
	err := r.db.QueryRowContext(ctx, r.q(`
		INSERT INTO categorias (nome, tipo, cor)
		VALUES (?, ?, ?)
		RETURNING id
	`), c.Name, string(c.Type), c.Color).Scan(&c.ID)
	if err != nil {
		if r.dialect.IsUniqueViolation(err) {
			return core.ErrDuplicate
		}
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// ListCategories returns every category. Categories are global, never
// scoped by user.
func (r *Repository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, nome, tipo, cor FROM categorias ORDER BY nome")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.Color); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) GetCategory(ctx context.Context, id int64) (*core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		r.q("SELECT id, nome, tipo, cor FROM categorias WHERE id = ?"), id,
	).Scan(&c.ID, &c.Name, &c.Type, &c.Color)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

// UpdateCategory applies a sparse update and returns the fresh row.
func (r *Repository) UpdateCategory(ctx context.Context, id int64, upd CategoryUpdate) (*core.Category, error) {
	var (
		sets []string
		args []any
	)
	if upd.Name != nil {
		sets = append(sets, "nome = ?")
		args = append(args, *upd.Name)
	}
	if upd.Type != nil {
		sets = append(sets, "tipo = ?")
		args = append(args, string(*upd.Type))
	}
	if upd.Color != nil {
		sets = append(sets, "cor = ?")
		args = append(args, *upd.Color)
	}
	if len(sets) == 0 {
		return r.GetCategory(ctx, id)
	}
	args = append(args, id)

	res, err := r.db.ExecContext(ctx,
		r.q("UPDATE categorias SET "+strings.Join(sets, ", ")+" WHERE id = ?"), args...)
	if err != nil {
		if r.dialect.IsUniqueViolation(err) {
			return nil, core.ErrDuplicate
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, core.ErrNotFound
	}
	return r.GetCategory(ctx, id)
}

// DeleteCategory removes a category. The in-use check is the foreign key
// constraint itself, not a pre-query: a pre-query would race with a
// concurrent transaction insert, the constraint cannot.
func (r *Repository) DeleteCategory(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.q("DELETE FROM categorias WHERE id = ?"), id)
	if err != nil {
		if r.dialect.IsForeignKeyViolation(err) {
			return core.ErrCategoryInUse
		}
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// --- transactions ---

// CreateTransaction inserts a transaction for its owner. A nonexistent
// category surfaces as core.ErrInvalidReference.
func (r *Repository) CreateTransaction(ctx context.Context, t *core.Transaction) error {
	err := r.db.QueryRowContext(ctx, r.q(`
		INSERT INTO transacoes (descricao, valor_centavos, data, observacoes, categoria_id, usuario_id)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`), t.Description, t.Amount.Cents, r.dialect.TimeValue(t.Date),
		nullStr(t.Notes), t.CategoryID, t.UserID,
	).Scan(&t.ID)
	if err != nil {
		if r.dialect.IsForeignKeyViolation(err) {
			return core.ErrInvalidReference
		}
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// UpdateTransaction replaces every mutable field of an owned transaction
// (a PUT, not a PATCH: absent fields were already rejected upstream). A row
// owned by someone else is indistinguishable from a missing row.
func (r *Repository) UpdateTransaction(ctx context.Context, id, userID int64, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx, r.q(`
		UPDATE transacoes
		SET descricao = ?, valor_centavos = ?, data = ?, observacoes = ?, categoria_id = ?
		WHERE id = ? AND usuario_id = ?
	`), t.Description, t.Amount.Cents, r.dialect.TimeValue(t.Date),
		nullStr(t.Notes), t.CategoryID, id, userID)
	if err != nil {
		if r.dialect.IsForeignKeyViolation(err) {
			return core.ErrInvalidReference
		}
		return fmt.Errorf("update transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteTransaction removes an owned transaction. Same ownership collapse
// as UpdateTransaction.
func (r *Repository) DeleteTransaction(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		r.q("DELETE FROM transacoes WHERE id = ? AND usuario_id = ?"), id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

const transactionColumns = `
	t.id, t.descricao, t.valor_centavos, t.data, t.observacoes, t.categoria_id, t.usuario_id,
	c.id, c.nome, c.tipo, c.cor`

// ListTransactions returns a page of the user's transactions, newest first,
// with the category joined in so callers never fetch it per row.
func (r *Repository) ListTransactions(ctx context.Context, userID int64, skip, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, r.q(`
		SELECT `+transactionColumns+`
		FROM transacoes t
		JOIN categorias c ON c.id = t.categoria_id
		WHERE t.usuario_id = ?
		ORDER BY t.data DESC
		LIMIT ? OFFSET ?
	`), userID, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// ListTransactionsByPeriod returns every transaction of the user inside the
// period, newest first. The period's end day is fully included.
func (r *Repository) ListTransactionsByPeriod(ctx context.Context, userID int64, p core.Period) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, r.q(`
		SELECT `+transactionColumns+`
		FROM transacoes t
		JOIN categorias c ON c.id = t.categoria_id
		WHERE t.usuario_id = ? AND t.data >= ? AND t.data < ?
		ORDER BY t.data DESC
	`), userID, r.dialect.TimeValue(p.Start), r.dialect.TimeValue(p.UpperBound()))
	if err != nil {
		return nil, fmt.Errorf("list transactions by period: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var out []core.Transaction
	for rows.Next() {
		var (
			t     core.Transaction
			c     core.Category
			date  scannedTime
			notes sql.NullString
		)
		if err := rows.Scan(
			&t.ID, &t.Description, &t.Amount.Cents, &date, &notes, &t.CategoryID, &t.UserID,
			&c.ID, &c.Name, &c.Type, &c.Color,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Date = date.T
		t.Notes = notes.String
		t.Category = &c
		out = append(out, t)
	}
	return out, rows.Err()
}
