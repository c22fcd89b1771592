// Package repository содержит реализацию доступа к данным в PostgreSQL.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"

	"github.com/mmeshcher/bearphone-pos/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrSaleNotFound возвращается, если продажа с указанным идентификатором не найдена.
var ErrSaleNotFound = errors.New("sale not found")

// PostgresRepository предоставляет доступ к хранилищу продаж в PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// БД может подниматься дольше сервиса, поэтому первый ping повторяется с паузами.
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(time.Second))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if pingErr := pool.Ping(ctx); pingErr != nil {
			return retry.RetryableError(pingErr)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func (r *PostgresRepository) withRetry(ctx context.Context, fn func() error) error {
	var err error
	delays := []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

	for i := 0; i <= len(delays); i++ {
		err = fn()
		if err == nil {
			return nil
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected {
				if i < len(delays) {
					time.Sleep(delays[i])
					continue
				}
			}
		}

		if isConnectionError(err) {
			if i < len(delays) {
				time.Sleep(delays[i])
				continue
			}
		}

		break
	}
	return err
}

func isConnectionError(err error) bool {
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// CreateSale сохраняет продажу одной атомарной вставкой. Идентификатор и
// created_at присваивает БД; возвращается полная сохранённая запись.
func (r *PostgresRepository) CreateSale(ctx context.Context, s *model.Sale) (*model.Sale, error) {
	stored := *s

	err := r.withRetry(ctx, func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO sales (customer_name, phone, item_description, quantity,
			                    price, discount, net_amount, paid, remaining,
			                    warranty_duration, warranty_expiry, notes, sale_date)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			 RETURNING id, created_at`,
			s.CustomerName, s.Phone, s.ItemDescription, s.Quantity,
			s.PriceCents, s.DiscountCents, s.NetAmountCents, s.PaidCents, s.RemainingCents,
			string(s.WarrantyDuration), s.WarrantyExpiry, nullableNotes(s.Notes), s.SaleDate,
		).Scan(&stored.ID, &stored.CreatedAt)
	})
	if err != nil {
		return nil, fmt.Errorf("insert sale: %w", err)
	}

	return &stored, nil
}

const saleColumns = `id, customer_name, phone, item_description, quantity,
	price, discount, net_amount, paid, remaining,
	warranty_duration, warranty_expiry, notes, sale_date, created_at`

// ListSales возвращает все продажи, отсортированные по дате продажи по
// убыванию; при равных датах первой идёт более поздняя вставка.
func (r *PostgresRepository) ListSales(ctx context.Context) ([]model.Sale, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+saleColumns+`
		 FROM sales
		 ORDER BY sale_date DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("select sales: %w", err)
	}
	defer rows.Close()

	var sales []model.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return sales, nil
}

// GetSaleByID возвращает продажу по идентификатору.
func (r *PostgresRepository) GetSaleByID(ctx context.Context, id int64) (*model.Sale, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+saleColumns+`
		 FROM sales
		 WHERE id = $1`,
		id,
	)

	s, err := scanSale(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	return s, nil
}

// GetStats возвращает агрегированные показатели по всем продажам. Границы
// текущего дня вычисляются по часам сервера, а не клиента.
func (r *PostgresRepository) GetStats(ctx context.Context) (*model.DashboardStats, error) {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	stats := &model.DashboardStats{}

	var revenueCents int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(net_amount), 0) FROM sales`,
	).Scan(&stats.TotalSales, &revenueCents)
	if err != nil {
		return nil, fmt.Errorf("sum sales: %w", err)
	}
	stats.TotalRevenue = float64(revenueCents) / 100

	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM sales WHERE warranty_expiry IS NOT NULL AND warranty_expiry > $1`,
		now,
	).Scan(&stats.ActiveWarranties)
	if err != nil {
		return nil, fmt.Errorf("count warranties: %w", err)
	}

	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM sales WHERE sale_date >= $1 AND sale_date < $2`,
		dayStart, dayEnd,
	).Scan(&stats.TodaySales)
	if err != nil {
		return nil, fmt.Errorf("count today sales: %w", err)
	}

	return stats, nil
}

func nullableNotes(notes string) *string {
	if notes == "" {
		return nil
	}
	return &notes
}

func scanSale(row pgx.Row) (*model.Sale, error) {
	var (
		s        model.Sale
		duration string
		expiry   *time.Time
		notes    *string
	)

	err := row.Scan(&s.ID, &s.CustomerName, &s.Phone, &s.ItemDescription, &s.Quantity,
		&s.PriceCents, &s.DiscountCents, &s.NetAmountCents, &s.PaidCents, &s.RemainingCents,
		&duration, &expiry, &notes, &s.SaleDate, &s.CreatedAt)
	if err != nil {
		return nil, err
	}

	s.WarrantyDuration = model.WarrantyDuration(duration)
	s.WarrantyExpiry = expiry
	if notes != nil {
		s.Notes = *notes
	}

	return &s, nil
}
