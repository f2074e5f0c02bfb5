package db

import (
	"log"
	"log/slog"
	"time"

	"github.com/freshersjob/freshersjob/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func NewConn(conf *config.Config) *sqlx.DB {
	slog.Info("Connecting to database", slog.String("host", conf.DB_HOST), slog.String("name", conf.DB_NAME))

	// Connect to database
	db, err := sqlx.Open("postgres", conf.DSN())
	if err != nil {
		log.Fatal(err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	err = db.Ping()
	if err != nil {
		log.Fatalln("Unable to connect to database", err.Error())
	}

	slog.Info("Connected to database")

	return db
}
