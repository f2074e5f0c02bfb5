package migrations

import (
	"bytes"
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"github.com/freshersjob/freshersjob/internal/config"
	"github.com/freshersjob/freshersjob/internal/db"

	"github.com/jmoiron/sqlx"
)

//go:embed template.txt
var migrationTemplate string

// Dir is where CreateMigration writes new migration files.
var Dir = "./internal/migrations"

type migration struct {
	version string
	done    bool
	up      func(*sqlx.Tx) error
	down    func(*sqlx.Tx) error
}

// Migrator applies the registered schema migrations and records them in metadata.schema_migrations.
type Migrator struct {
	db         *sqlx.DB
	versions   []string
	migrations map[string]*migration
}

var m = &Migrator{
	versions:   []string{},
	migrations: map[string]*migration{},
}

func NewMigrator() (*Migrator, error) {
	conf := config.ReadConfig()

	m.db = db.NewConn(conf)

	_, err := m.db.Exec(`CREATE SCHEMA IF NOT EXISTS metadata`)
	if err != nil {
		slog.Error("Unable to create metadata schema", slog.Any("error", err))
		return nil, err
	}

	_, err = m.db.Exec(`CREATE TABLE IF NOT EXISTS metadata.schema_migrations (
		version varchar(255)
	);`)
	if err != nil {
		slog.Error("Unable to create `schema_migrations` table", slog.Any("error", err))
		return nil, err
	}

	var done []string
	if err := m.db.Select(&done, "SELECT version FROM metadata.schema_migrations;"); err != nil {
		slog.Error("Unable to fetch completed migrations", slog.Any("error", err))
		return nil, err
	}
	m.markDone(done)

	return m, nil
}

func (m *Migrator) markDone(versions []string) {
	for _, v := range versions {
		if mg := m.migrations[v]; mg != nil {
			mg.done = true
		}
	}
}

// addMigration keeps versions sorted as migrations register themselves from init.
func (m *Migrator) addMigration(mg *migration) {
	m.migrations[mg.version] = mg

	index := 0
	for index < len(m.versions) {
		if m.versions[index] > mg.version {
			break
		}
		index++
	}

	m.versions = append(m.versions, mg.version)
	copy(m.versions[index+1:], m.versions[index:])
	m.versions[index] = mg.version
}

func (m *Migrator) MigrationStatus() error {
	for _, v := range m.versions {
		if m.migrations[v].done {
			slog.Info(fmt.Sprintf("Migration %s... completed", v))
		} else {
			slog.Info(fmt.Sprintf("Migration %s... pending", v))
		}
	}

	return nil
}

// CreateMigration writes an empty migration named title into Dir.
func CreateMigration(title string) error {
	if title == "" {
		return fmt.Errorf("migration name is required")
	}

	var out bytes.Buffer
	version := time.Now().Format("20060102150405")

	t := template.Must(template.New("migration").Parse(migrationTemplate))
	if err := t.Execute(&out, struct{ Version, Title string }{version, title}); err != nil {
		slog.Error("Unable to execute migration template", slog.Any("error", err))
		return err
	}

	name := filepath.Join(Dir, fmt.Sprintf("%s_%s.go", version, title))
	if err := os.WriteFile(name, out.Bytes(), 0o644); err != nil {
		slog.Error("Unable to create the migration file", slog.Any("error", err))
		return err
	}

	slog.Info("Generated new migration file...", slog.String("filename", name))
	return nil
}

// Up runs pending migrations in version order, at most step of them when step > 0.
func (m *Migrator) Up(step int) error {
	return m.run(step, m.versions, false)
}

// Down reverts applied migrations newest first, at most step of them when step > 0.
func (m *Migrator) Down(step int) error {
	return m.run(step, reverse(m.versions), true)
}

func (m *Migrator) run(step int, versions []string, down bool) (err error) {
	tx, err := m.db.BeginTxx(context.TODO(), &sql.TxOptions{})
	if err != nil {
		slog.Info("Unable to start transaction to run migrations", slog.Any("error", err))
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Info("panic", slog.Any("details", r))
			_ = tx.Rollback()
			err = fmt.Errorf("migration panicked: %v", r)
		}
	}()

	direction, bookkeeping := "up", "INSERT INTO metadata.schema_migrations VALUES($1);"
	if down {
		direction, bookkeeping = "down", "DELETE FROM metadata.schema_migrations WHERE version = $1;"
	}

	var applied []*migration
	for _, v := range versions {
		if step > 0 && len(applied) == step {
			break
		}

		mg := m.migrations[v]
		if mg.done != down {
			continue
		}

		l := slog.With(slog.String("version", mg.version))
		l.Info(fmt.Sprintf("Running %s migration...", direction))

		fn := mg.up
		if down {
			fn = mg.down
		}
		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			l.Error("Error occurred while running migration", slog.Any("error", err))
			return err
		}

		if _, err := tx.Exec(bookkeeping, mg.version); err != nil {
			_ = tx.Rollback()
			l.Error("Failed to update `metadata.schema_migrations`", slog.Any("error", err))
			return err
		}

		applied = append(applied, mg)
		l.Info(fmt.Sprintf("Finished %s migration...", direction))
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	for _, mg := range applied {
		mg.done = !down
	}
	return nil
}

func reverse(arr []string) []string {
	out := make([]string, len(arr))
	for i, v := range arr {
		out[len(arr)-1-i] = v
	}
	return out
}
