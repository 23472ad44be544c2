package pgsql

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zeptools/docoverlay/db/sqldb"
)

type Client struct {
	Conf *sqldb.Conf

	pool *pgxpool.Pool
	dsn  string
}

// Ensure pgsql.Client implements sqldb.Client interface
var _ sqldb.Client = (*Client)(nil)

// Register makes "pgsql" available to sqldb.New.
func Register() {
	sqldb.RegisterFactory("pgsql", func(conf *sqldb.Conf) (sqldb.Client, error) {
		return &Client{Conf: conf}, nil
	})
}

func (c *Client) Init() error {
	// DSN
	if c.Conf.DSN != "" {
		c.dsn = c.Conf.DSN
	} else {
		tz := c.Conf.TZ
		if tz == "" {
			tz = "UTC"
		}
		// NOTE: sslmode=disable is often used for local dev, adjust as needed.
		c.dsn = fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=%s",
			c.Conf.Host,
			c.Conf.Port,
			c.Conf.User,
			c.Conf.PW,
			c.Conf.DB,
			tz,
		)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	config, err := pgxpool.ParseConfig(c.dsn)
	if err != nil {
		return fmt.Errorf("failed to parse pgx config: %w", err)
	}
	// counters need few connections
	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = 3 * time.Minute
	c.pool, err = pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to connect pgx pool: %w", err)
	}
	if err = c.Ping(ctx); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}
	log.Print("[INFO] pgsql client initialized")
	return nil
}

func (c *Client) GetConf() *sqldb.Conf {
	return c.Conf
}

func (c *Client) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

func (c *Client) Close() error {
	if c.pool == nil {
		return nil
	}
	log.Println("[INFO] closing pgsql client")
	c.pool.Close()
	log.Println("[INFO] pgsql client closed")
	return nil
}

func (c *Client) BeginTx(ctx context.Context) (sqldb.Tx, error) {
	if c.pool == nil {
		return nil, fmt.Errorf("pgsql client not initialized")
	}
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction failed: %w", err)
	}
	return &Tx{tx: tx}, nil
}
