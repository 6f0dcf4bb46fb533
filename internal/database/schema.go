package database

import (
	"context"
	"database/sql"
	"time"
)

// schema holds the DDL for every table the application owns.  Statements are
// idempotent so EnsureSchema can run on every boot.  The unique key on
// cart_items (user_id, product_id) is what guarantees at most one cart line
// per product per user; AddToCart relies on it with an upsert.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name          VARCHAR(255) NOT NULL,
		email         VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role          ENUM('customer','admin') NOT NULL DEFAULT 'customer',
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS products (
		id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name        VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		price       DECIMAL(10,2) NOT NULL,
		image_url   VARCHAR(1024) NOT NULL DEFAULT '',
		category    VARCHAR(100) NOT NULL,
		is_featured TINYINT(1) NOT NULL DEFAULT 0,
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_products_category (category),
		KEY idx_products_featured (is_featured)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS cart_items (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		product_id BIGINT UNSIGNED NOT NULL,
		quantity   INT UNSIGNED NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_cart_user_product (user_id, product_id),
		CONSTRAINT fk_cart_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT fk_cart_product FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS coupons (
		id                  BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		code                VARCHAR(64) NOT NULL,
		discount_percentage INT UNSIGNED NOT NULL,
		expires_at          DATETIME NOT NULL,
		user_id             BIGINT UNSIGNED NOT NULL,
		is_active           TINYINT(1) NOT NULL DEFAULT 1,
		created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_coupons_code (code),
		KEY idx_coupons_user (user_id),
		CONSTRAINT fk_coupon_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS orders (
		id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id      BIGINT UNSIGNED NOT NULL,
		gateway_ref  VARCHAR(128) NOT NULL,
		total_amount DECIMAL(10,2) NOT NULL,
		created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_orders_gateway_ref (gateway_ref),
		KEY idx_orders_user (user_id),
		KEY idx_orders_created (created_at),
		CONSTRAINT fk_order_user FOREIGN KEY (user_id) REFERENCES users(id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		order_id   BIGINT UNSIGNED NOT NULL,
		product_id BIGINT UNSIGNED NOT NULL,
		quantity   INT UNSIGNED NOT NULL,
		price      DECIMAL(10,2) NOT NULL,
		CONSTRAINT fk_item_order FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
	) ENGINE=InnoDB`,
}

// EnsureSchema creates any missing tables.  It is safe to call on every
// startup and keeps a fresh database usable without a separate migration
// step.
func EnsureSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
