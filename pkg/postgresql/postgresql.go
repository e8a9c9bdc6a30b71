package postgresql

import (
	"database/sql"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"github.com/tsel-ticketmaster/tm-ticket/config"
)

var (
	db   *sql.DB
	once sync.Once
)

// GetDatabase returns the shared connection pool. The pool is sized from
// configuration; failures surface on the first Ping, not here.
func GetDatabase() *sql.DB {
	once.Do(func() {
		c := config.Get()

		conn, err := sql.Open("postgres", c.PostgreSQL.DSN)
		if err != nil {
			panic(err)
		}

		conn.SetMaxOpenConns(c.PostgreSQL.MaxOpenConnections)
		conn.SetMaxIdleConns(c.PostgreSQL.MaxIdleConnections)
		conn.SetConnMaxLifetime(time.Duration(c.PostgreSQL.ConnectionMaxLifetime) * time.Second)

		db = conn
	})

	return db
}
