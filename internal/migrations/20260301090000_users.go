package migrations

import "github.com/jmoiron/sqlx"

func init() {
	m.addMigration(&migration{
		version: "20260301090000",
		up:      mig_20260301090000_users_up,
		down:    mig_20260301090000_users_down,
	})
}

func mig_20260301090000_users_up(tx *sqlx.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			first_name VARCHAR(100) NOT NULL DEFAULT '',
			last_name VARCHAR(100) NOT NULL DEFAULT '',
			email VARCHAR(255) NOT NULL,
			password_hash TEXT NOT NULL,
			phone VARCHAR(20) NOT NULL DEFAULT '',
			role VARCHAR(20) NOT NULL DEFAULT 'candidate',
			created_date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email);`)
	return err
}

func mig_20260301090000_users_down(tx *sqlx.Tx) error {
	_, err := tx.Exec(`DROP TABLE IF EXISTS users;`)
	return err
}
