package migrations

import "github.com/jmoiron/sqlx"

func init() {
	m.addMigration(&migration{
		version: "20260301091000",
		up:      mig_20260301091000_userprofile_up,
		down:    mig_20260301091000_userprofile_down,
	})
}

func mig_20260301091000_userprofile_up(tx *sqlx.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS userprofile (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_by VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL,
			headline TEXT NOT NULL DEFAULT '',
			bio TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			phone VARCHAR(20) NOT NULL DEFAULT '',
			skills TEXT[] NOT NULL DEFAULT '{}',
			education TEXT NOT NULL DEFAULT '',
			experience_years INTEGER NOT NULL DEFAULT 0,
			profile_photo TEXT NOT NULL DEFAULT '',
			resume_url TEXT NOT NULL DEFAULT '',
			company_name TEXT NOT NULL DEFAULT '',
			company_website TEXT NOT NULL DEFAULT '',
			company_size TEXT NOT NULL DEFAULT '',
			created_date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			CONSTRAINT userprofile_role_check CHECK (role IN ('candidate', 'employer'))
		);
	`)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_userprofile_created_by ON userprofile(created_by);`)
	return err
}

func mig_20260301091000_userprofile_down(tx *sqlx.Tx) error {
	_, err := tx.Exec(`DROP TABLE IF EXISTS userprofile;`)
	return err
}
