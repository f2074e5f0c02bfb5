package migrations

import "github.com/jmoiron/sqlx"

func init() {
	m.addMigration(&migration{
		version: "20260301093000",
		up:      mig_20260301093000_applications_up,
		down:    mig_20260301093000_applications_down,
	})
}

func mig_20260301093000_applications_up(tx *sqlx.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS applications (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			job_id UUID NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
			candidate_email VARCHAR(255) NOT NULL,
			candidate_name VARCHAR(200) NOT NULL DEFAULT '',
			resume_url TEXT NOT NULL DEFAULT '',
			cover_letter TEXT NOT NULL DEFAULT '',
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			job_title VARCHAR(200) NOT NULL DEFAULT '',
			company_name VARCHAR(200) NOT NULL DEFAULT '',
			employer_id VARCHAR(255) NOT NULL DEFAULT '',
			created_date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			CONSTRAINT applications_status_check CHECK (status IN ('pending', 'reviewed', 'shortlisted', 'rejected', 'hired'))
		);
	`)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_applications_job_candidate ON applications(job_id, candidate_email);`)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`CREATE INDEX IF NOT EXISTS idx_applications_candidate_email ON applications(candidate_email);`)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`CREATE INDEX IF NOT EXISTS idx_applications_employer_id ON applications(employer_id);`)
	return err
}

func mig_20260301093000_applications_down(tx *sqlx.Tx) error {
	_, err := tx.Exec(`DROP TABLE IF EXISTS applications;`)
	return err
}
