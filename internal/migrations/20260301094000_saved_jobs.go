package migrations

import "github.com/jmoiron/sqlx"

func init() {
	m.addMigration(&migration{
		version: "20260301094000",
		up:      mig_20260301094000_saved_jobs_up,
		down:    mig_20260301094000_saved_jobs_down,
	})
}

func mig_20260301094000_saved_jobs_up(tx *sqlx.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS saved_jobs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_email VARCHAR(255) NOT NULL,
			job_id UUID NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
			created_date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_saved_jobs_user_job ON saved_jobs(user_email, job_id);`)
	return err
}

func mig_20260301094000_saved_jobs_down(tx *sqlx.Tx) error {
	_, err := tx.Exec(`DROP TABLE IF EXISTS saved_jobs;`)
	return err
}
