package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tamilore/orgvoice/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS departments (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'employee'
		CHECK (role IN ('employee', 'manager', 'hr', 'admin')),
	department_id BIGINT REFERENCES departments (id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS surveys (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT,
	category TEXT NOT NULL
		CHECK (category IN ('project', 'manager', 'workplace', 'general', 'training', 'custom')),
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	start_date TIMESTAMPTZ NOT NULL,
	end_date TIMESTAMPTZ NOT NULL,
	is_anonymous BOOLEAN NOT NULL DEFAULT FALSE,
	allow_multiple_submissions BOOLEAN NOT NULL DEFAULT FALSE,
	target_departments BIGINT[] NOT NULL DEFAULT '{}',
	target_roles TEXT[] NOT NULL DEFAULT '{}',
	created_by BIGINT NOT NULL REFERENCES users (id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS survey_questions (
	id BIGSERIAL PRIMARY KEY,
	survey_id BIGINT NOT NULL REFERENCES surveys (id) ON DELETE CASCADE,
	question_text TEXT NOT NULL,
	question_type TEXT NOT NULL
		CHECK (question_type IN ('text', 'textarea', 'multiple', 'checkbox', 'rating', 'scale', 'number', 'date', 'email', 'url')),
	options TEXT[] NOT NULL DEFAULT '{}',
	is_required BOOLEAN NOT NULL DEFAULT FALSE,
	order_index INT NOT NULL,
	UNIQUE (survey_id, order_index)
);

CREATE TABLE IF NOT EXISTS survey_responses (
	id BIGSERIAL PRIMARY KEY,
	survey_id BIGINT NOT NULL REFERENCES surveys (id),
	respondent_id BIGINT REFERENCES users (id),
	submitted_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	time_spent_seconds INT NOT NULL DEFAULT 0 CHECK (time_spent_seconds >= 0),
	meta_department_id BIGINT,
	meta_role TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS response_answers (
	id BIGSERIAL PRIMARY KEY,
	response_id BIGINT NOT NULL REFERENCES survey_responses (id) ON DELETE CASCADE,
	order_index INT NOT NULL,
	question_text TEXT NOT NULL,
	question_type TEXT NOT NULL,
	answer_value JSONB,
	UNIQUE (response_id, order_index)
);

CREATE TABLE IF NOT EXISTS response_receipts (
	survey_id BIGINT NOT NULL REFERENCES surveys (id),
	user_id BIGINT NOT NULL REFERENCES users (id),
	submitted_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (survey_id, user_id)
);
`

// Migrate applies the schema on startup. Statements are idempotent, so running
// it against an existing database is a no-op.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("error applying schema: %v", err)
	}

	log.Info("database schema up to date")

	return nil
}
