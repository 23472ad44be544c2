package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql" // side-effect

	"github.com/zeptools/docoverlay/db/sqldb"
)

type Client struct {
	Conf *sqldb.Conf

	// db fields are implementation details, not exported
	db  *sql.DB
	dsn string
}

// Ensure mysql.Client implements sqldb.Client interface
var _ sqldb.Client = (*Client)(nil)

// Register makes "mysql" available to sqldb.New.
func Register() {
	sqldb.RegisterFactory("mysql", func(conf *sqldb.Conf) (sqldb.Client, error) {
		return &Client{Conf: conf}, nil
	})
}

func (c *Client) Init() error {
	var err error
	if c.Conf.DSN != "" {
		c.dsn = c.Conf.DSN
	} else {
		tz := c.Conf.TZ
		if tz == "" {
			tz = "UTC"
		}
		c.dsn = fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=%s",
			c.Conf.User,
			c.Conf.PW,
			c.Conf.Host,
			c.Conf.Port,
			c.Conf.DB,
			tz,
		)
	}
	if c.db, err = sql.Open("mysql", c.dsn); err != nil {
		return err
	}
	c.db.SetConnMaxLifetime(time.Minute * 3)
	c.db.SetMaxOpenConns(10)
	c.db.SetMaxIdleConns(10)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = c.Ping(ctx); err != nil {
		return fmt.Errorf("mysql ping failed: %w", err)
	}
	log.Println("[INFO] mysql client initialized")
	return nil
}

func (c *Client) GetConf() *sqldb.Conf {
	return c.Conf
}

func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Client) Close() error {
	if c.db == nil {
		return nil
	}
	log.Println("[INFO] closing mysql client")
	err := c.db.Close()
	if err != nil {
		return err
	}
	log.Println("[INFO] mysql client closed")
	return nil
}

func (c *Client) BeginTx(ctx context.Context) (sqldb.Tx, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx}, nil
}
