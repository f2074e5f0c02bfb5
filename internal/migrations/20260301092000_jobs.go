package migrations

import "github.com/jmoiron/sqlx"

func init() {
	m.addMigration(&migration{
		version: "20260301092000",
		up:      mig_20260301092000_jobs_up,
		down:    mig_20260301092000_jobs_down,
	})
}

func mig_20260301092000_jobs_up(tx *sqlx.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS jobs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			employer_id VARCHAR(255) NOT NULL,
			title VARCHAR(200) NOT NULL,
			company_name VARCHAR(200) NOT NULL,
			location VARCHAR(200) NOT NULL,
			job_type VARCHAR(20) NOT NULL,
			experience_level VARCHAR(20) NOT NULL DEFAULT 'fresher',
			salary_min NUMERIC(10, 2),
			salary_max NUMERIC(10, 2),
			description TEXT NOT NULL,
			requirements TEXT NOT NULL DEFAULT '',
			skills TEXT[] NOT NULL DEFAULT '{}',
			status VARCHAR(20) NOT NULL DEFAULT 'active',
			applications_count INTEGER NOT NULL DEFAULT 0,
			created_date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			CONSTRAINT jobs_status_check CHECK (status IN ('active', 'closed', 'draft')),
			CONSTRAINT jobs_applications_count_check CHECK (applications_count >= 0)
		);
	`)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`CREATE INDEX IF NOT EXISTS idx_jobs_employer_id ON jobs(employer_id);`)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`CREATE INDEX IF NOT EXISTS idx_jobs_status_created_date ON jobs(status, created_date DESC);`)
	return err
}

func mig_20260301092000_jobs_down(tx *sqlx.Tx) error {
	_, err := tx.Exec(`DROP TABLE IF EXISTS jobs;`)
	return err
}
