package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/InventoryUI/internal/core"
)

// PoolConfig sizes the connection pool.
type PoolConfig struct {
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Postgres is a Store backed by the items table.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

// OpenPostgres connects a pool to url and verifies it with a ping.
func OpenPostgres(ctx context.Context, url string, cfg PoolConfig) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("database connection established",
		"max_conns", poolConfig.MaxConns,
		"min_conns", poolConfig.MinConns,
	)
	return &Postgres{pool: pool}, nil
}

// NewPostgres wraps an existing pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const itemColumns = `id, int_part_num, int_name, re_order, vendor, quantity, sloc, qr_code, label, active, created_at`

func (p *Postgres) List(ctx context.Context) ([]core.Item, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+itemColumns+` FROM items ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return collectItems(rows)
}

func (p *Postgres) Page(ctx context.Context, offset, limit int) ([]core.Item, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		return []core.Item{}, nil
	}
	rows, err := p.pool.Query(ctx,
		`SELECT `+itemColumns+` FROM items ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("page items: %w", err)
	}
	return collectItems(rows)
}

func (p *Postgres) Count(ctx context.Context) (int, error) {
	var n int
	if err := p.pool.QueryRow(ctx, `SELECT count(*) FROM items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

func (p *Postgres) Get(ctx context.Context, id int64) (*core.Item, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
	it, err := scanItem(row)
	if err != nil {
		return nil, notFound(id, err)
	}
	return it, nil
}

func (p *Postgres) Create(ctx context.Context, it core.Item) (*core.Item, error) {
	row := p.pool.QueryRow(ctx, `
		INSERT INTO items (int_part_num, int_name, re_order, vendor, quantity, sloc, qr_code, label, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+itemColumns,
		toPgText(it.IntPartNum), toPgText(it.IntName), toPgInt8(it.ReOrder),
		toPgText(it.Vendor), toPgInt8(it.Quantity), toPgText(it.Sloc),
		toPgText(it.QrCode), toPgText(it.Label), toPgBool(it.Active),
	)
	created, err := scanItem(row)
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return created, nil
}

// Update leaves NULL parameters unchanged via COALESCE.
func (p *Postgres) Update(ctx context.Context, id int64, it core.Item) (*core.Item, error) {
	row := p.pool.QueryRow(ctx, `
		UPDATE items SET
			int_part_num = COALESCE($2, int_part_num),
			int_name     = COALESCE($3, int_name),
			re_order     = COALESCE($4, re_order),
			vendor       = COALESCE($5, vendor),
			quantity     = COALESCE($6, quantity),
			sloc         = COALESCE($7, sloc),
			qr_code      = COALESCE($8, qr_code),
			label        = COALESCE($9, label),
			active       = COALESCE($10, active)
		WHERE id = $1
		RETURNING `+itemColumns,
		id,
		toPgText(it.IntPartNum), toPgText(it.IntName), toPgInt8(it.ReOrder),
		toPgText(it.Vendor), toPgInt8(it.Quantity), toPgText(it.Sloc),
		toPgText(it.QrCode), toPgText(it.Label), toPgBool(it.Active),
	)
	updated, err := scanItem(row)
	if err != nil {
		return nil, notFound(id, err)
	}
	return updated, nil
}

func (p *Postgres) Delete(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete item %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %d: %w", id, core.ErrNotFound)
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error { return p.pool.Ping(ctx) }

func (p *Postgres) Close() { p.pool.Close() }

func notFound(id int64, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("item %d: %w", id, core.ErrNotFound)
	}
	return fmt.Errorf("item %d: %w", id, err)
}

func scanItem(row pgx.Row) (*core.Item, error) {
	var (
		id                                         int64
		partNum, name, vendor, sloc, qrCode, label pgtype.Text
		reOrder, quantity                          pgtype.Int8
		active                                     pgtype.Bool
		createdAt                                  time.Time
	)
	if err := row.Scan(&id, &partNum, &name, &reOrder, &vendor, &quantity, &sloc, &qrCode, &label, &active, &createdAt); err != nil {
		return nil, err
	}
	return &core.Item{
		ID:         &id,
		IntPartNum: fromPgText(partNum),
		IntName:    fromPgText(name),
		ReOrder:    fromPgInt8(reOrder),
		Vendor:     fromPgText(vendor),
		Quantity:   fromPgInt8(quantity),
		Sloc:       fromPgText(sloc),
		QrCode:     fromPgText(qrCode),
		Label:      fromPgText(label),
		Active:     fromPgBool(active),
		CreatedAt:  &createdAt,
	}, nil
}

func collectItems(rows pgx.Rows) ([]core.Item, error) {
	defer rows.Close()
	items := []core.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
