package storage

import (
	"context"
	"log"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/swagata71/ds-practice-2025/configs"
)

// SQLStore keeps the stock map in a PostgreSQL table. The conditional
// decrement is a single guarded UPDATE, so concurrent orders for the same
// title serialize inside the database.
type SQLStore struct {
	ctx  context.Context
	pool *pgxpool.Pool
	wlog *LogManager
}

func (c *SQLStore) tryExec(sql string) {
	_, _ = c.pool.Exec(c.ctx, sql)
}

func NewSQLStore(nodeID string) *SQLStore {
	c := &SQLStore{wlog: NewLogManager(nodeID)}
	c.ctx = context.TODO()
	config, err := pgxpool.ParseConfig(configs.PostgreSQLLink)
	if err != nil {
		log.Fatalf("invalid postgres link: %v\n", err)
	}
	config.MaxConns = 100
	c.pool, err = pgxpool.ConnectConfig(context.Background(), config)
	if err != nil {
		log.Fatalf("unable to connect to database: %v\n", err)
	}
	c.tryExec("DROP TABLE IF EXISTS BOOKS_MAIN")
	c.tryExec("CREATE TABLE BOOKS_MAIN (title VARCHAR(255) PRIMARY KEY, stock INT)")
	return c
}

func (c *SQLStore) Read(title string) (int32, error) {
	var stock int32
	err := c.pool.QueryRow(c.ctx, "select stock from BOOKS_MAIN where title = $1", title).Scan(&stock)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return stock, nil
}

func (c *SQLStore) Write(title string, newStock int32) error {
	_, err := c.pool.Exec(c.ctx, "insert into BOOKS_MAIN (title, stock) values ($1, $2) "+
		"on conflict (title) do update set stock = $2", title, newStock)
	if err == nil {
		c.wlog.writeStock(title, newStock)
	}
	return err
}

func (c *SQLStore) DecrementStock(title string, quantity int32) (bool, int32, error) {
	var remaining int32
	err := c.pool.QueryRow(c.ctx, "update BOOKS_MAIN set stock = stock - $2 "+
		"where title = $1 and stock >= $2 returning stock", title, quantity).Scan(&remaining)
	if err == pgx.ErrNoRows {
		remaining, rerr := c.Read(title)
		return false, remaining, rerr
	}
	if err != nil {
		return false, 0, err
	}
	c.wlog.writeDecrement(title, quantity, remaining)
	return true, remaining, nil
}

func (c *SQLStore) Close() {
	c.wlog.Close()
	c.pool.Close()
}
