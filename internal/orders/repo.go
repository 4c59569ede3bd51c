package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// foreign_key_violation; a pedido_items row naming an unknown producto.
const (
	fkViolation     = "23503"
	uniqueViolation = "23505"
)

type Repo struct{ DB *pgxpool.Pool }

// Money columns travel as text so the decimal value is never rounded through float64.
const productColumns = `id, nombre, descripcion, precio::text, imagen_url, categoria, stock, activo`

func (r *Repo) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productColumns+` FROM productos ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query productos: %w", err)
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) GetProduct(ctx context.Context, id int64) (Product, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM productos WHERE id=$1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrProductNotFound
	}
	return p, err
}

func scanProduct(row pgx.Row) (Product, error) {
	var (
		p     Product
		price string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &price, &p.ImageURL, &p.Category, &p.Stock, &p.Active); err != nil {
		return Product{}, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return Product{}, fmt.Errorf("producto %d: precio %q: %w", p.ID, price, err)
	}
	p.Price = d
	return p, nil
}

// CreateOrderTx inserts the pedido and one pedido_items row per line in a single
// transaction. Idempotent via external_id: when the key was already used the
// existing pedido id is returned with existed=true.
func (r *Repo) CreateOrderTx(ctx context.Context, externalID string, req OrderRequest) (orderID int64, existed bool, err error) {
	if externalID != "" {
		if orderID, existed, err = r.orderByExternalID(ctx, externalID); err != nil || existed {
			return orderID, existed, err
		}
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO pedidos(external_id, cliente_email, cliente_nombre, cliente_telefono, direccion_envio, total, estado)
		VALUES ($1, $2, $3, $4, $5, $6::text::numeric, $7)
		RETURNING id`,
		nullable(externalID), req.CustomerEmail, req.CustomerName, req.CustomerPhone, req.ShippingAddress,
		req.Total.StringFixed(2), string(StatusPending),
	).Scan(&orderID)
	if err != nil {
		// A concurrent request with the same key committed first.
		var pgErr *pgconn.PgError
		if externalID != "" && errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			_ = tx.Rollback(ctx)
			id, ok, lookupErr := r.orderByExternalID(ctx, externalID)
			if lookupErr != nil {
				return 0, false, lookupErr
			}
			if ok {
				return id, true, nil
			}
		}
		return 0, false, fmt.Errorf("insert pedido: %w", err)
	}

	for _, it := range req.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO pedido_items(pedido_id, producto_id, cantidad, precio)
			VALUES ($1, $2, $3, $4::text::numeric)`,
			orderID, it.ProductID, it.Qty, it.Price.StringFixed(2),
		)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == fkViolation {
			return 0, false, fmt.Errorf("%w: %d", ErrProductNotFound, it.ProductID)
		}
		if err != nil {
			return 0, false, fmt.Errorf("insert pedido_item producto=%d: %w", it.ProductID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, false, err
	}
	return orderID, false, nil
}

func (r *Repo) orderByExternalID(ctx context.Context, externalID string) (int64, bool, error) {
	var id int64
	err := r.DB.QueryRow(ctx, `SELECT id FROM pedidos WHERE external_id=$1`, externalID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (r *Repo) GetOrder(ctx context.Context, id int64) (Order, error) {
	var (
		o          Order
		externalID *string
		status     string
		total      string
	)
	err := r.DB.QueryRow(ctx, `
		SELECT id, external_id, cliente_email, cliente_nombre, cliente_telefono, direccion_envio,
		       total::text, estado, created_at, updated_at
		FROM pedidos WHERE id=$1`, id).
		Scan(&o.ID, &externalID, &o.CustomerEmail, &o.CustomerName, &o.CustomerPhone, &o.ShippingAddress,
			&total, &status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("query pedido: %w", err)
	}
	if externalID != nil {
		o.ExternalID = *externalID
	}
	o.Status = Status(status)
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return Order{}, fmt.Errorf("pedido %d: total %q: %w", id, total, err)
	}

	rows, err := r.DB.Query(ctx, `
		SELECT producto_id, cantidad, precio::text
		FROM pedido_items WHERE pedido_id=$1 ORDER BY id`, id)
	if err != nil {
		return Order{}, fmt.Errorf("query pedido_items: %w", err)
	}
	defer rows.Close()

	o.Items = make([]OrderItem, 0)
	for rows.Next() {
		var (
			it    OrderItem
			price string
		)
		if err := rows.Scan(&it.ProductID, &it.Qty, &price); err != nil {
			return Order{}, err
		}
		if it.Price, err = decimal.NewFromString(price); err != nil {
			return Order{}, fmt.Errorf("pedido %d: precio %q: %w", id, price, err)
		}
		o.Items = append(o.Items, it)
	}
	return o, rows.Err()
}

func (r *Repo) GetOrderStatus(ctx context.Context, orderID int64) (Status, error) {
	var s string
	err := r.DB.QueryRow(ctx, `SELECT estado FROM pedidos WHERE id=$1`, orderID).Scan(&s)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrOrderNotFound
	}
	if err != nil {
		return "", err
	}
	return Status(s), nil
}

// UpdateStatus moves the pedido to `to` when the transition table allows it.
// Re-applying the current status is a no-op so redelivered events are harmless.
func (r *Repo) UpdateStatus(ctx context.Context, orderID int64, to Status) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var cur string
	err = tx.QueryRow(ctx, `SELECT estado FROM pedidos WHERE id=$1 FOR UPDATE`, orderID).Scan(&cur)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrOrderNotFound
	}
	if err != nil {
		return err
	}
	from := Status(cur)
	if from == to {
		return nil
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	if _, err := tx.Exec(ctx, `UPDATE pedidos SET estado=$2, updated_at=now() WHERE id=$1`, orderID, string(to)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
