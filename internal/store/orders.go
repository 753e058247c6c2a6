package store

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/models"
)

// CreateOrderWithItems creates an order together with its item snapshot and
// decrements product stock, all in a single transaction. Stock is floored at
// zero while the item row keeps the full ordered quantity.
func (s *Store) CreateOrderWithItems(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin checkout tx: %w", err)
	}
	defer tx.Rollback()

	orderQuery := `
		INSERT INTO orders (status, customer_email, customer_name, customer_phone, cep, address, notes,
			subtotal, shipping, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	err = tx.GetContext(ctx, order, orderQuery,
		order.Status, order.CustomerEmail, order.CustomerName, order.CustomerPhone,
		order.CEP, order.Address, order.Notes,
		order.Subtotal, order.Shipping, order.Total)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, product_name, size, unit_price, quantity, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	for i := range items {
		items[i].OrderID = order.ID
		err = tx.GetContext(ctx, &items[i].ID, itemQuery,
			items[i].OrderID, items[i].ProductID, items[i].ProductName, items[i].Size,
			items[i].UnitPrice, items[i].Quantity, items[i].LineTotal)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE products SET stock = GREATEST(stock - $1, 0) WHERE id = $2",
			items[i].Quantity, items[i].ProductID)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
	}

	return tx.Commit()
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderItems retrieves all items for an order
func (s *Store) GetOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", orderID)
	return items, err
}

// UpdateOrderStatus updates the order status
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, status string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		status, orderID)
	return err
}

// UpdateOrderPayment records the payment provider handoff on an order
func (s *Store) UpdateOrderPayment(ctx context.Context, orderID int64, provider, paymentRef, status string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE orders SET payment_provider = $1, payment_ref = $2, status = $3, updated_at = NOW() WHERE id = $4",
		provider, paymentRef, status, orderID)
	return err
}

// ListOrders retrieves orders, newest first, optionally filtered by status
func (s *Store) ListOrders(ctx context.Context, status string, limit int) ([]models.Order, error) {
	var orders []models.Order
	if status != "" {
		err := s.db.SelectContext(ctx, &orders,
			"SELECT * FROM orders WHERE status = $1 ORDER BY created_at DESC LIMIT $2", status, limit)
		return orders, err
	}
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders ORDER BY created_at DESC LIMIT $1", limit)
	return orders, err
}

// CountOrders returns the total number of orders
func (s *Store) CountOrders(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM orders")
	return count, err
}

// CountOrdersByStatus returns the number of orders with the given status
func (s *Store) CountOrdersByStatus(ctx context.Context, status string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM orders WHERE status = $1", status)
	return count, err
}
