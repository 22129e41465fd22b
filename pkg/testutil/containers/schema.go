//go:build integration

package containers

// Schema is the DDL applied to throwaway test databases. It mirrors the
// production migrations.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	role          TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS schemes (
	id                 TEXT PRIMARY KEY,
	name               TEXT NOT NULL,
	description        TEXT NOT NULL DEFAULT '',
	category           TEXT NOT NULL DEFAULT '',
	benefits           TEXT NOT NULL DEFAULT '',
	deadline           TIMESTAMPTZ NOT NULL,
	required_documents TEXT[] NOT NULL DEFAULT '{}',
	rules              JSONB NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS applications (
	id                   UUID PRIMARY KEY,
	scheme_id            TEXT NOT NULL REFERENCES schemes (id),
	applicant_id         UUID NOT NULL,
	facts                JSONB NOT NULL DEFAULT '{}',
	documents            JSONB NOT NULL DEFAULT '[]',
	status               TEXT NOT NULL,
	assigned_reviewer_id UUID,
	comments             JSONB NOT NULL DEFAULT '[]',
	history              JSONB NOT NULL DEFAULT '[]',
	submitted_at         TIMESTAMPTZ NOT NULL,
	clarified_at         TIMESTAMPTZ,
	version              INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS applications_applicant_idx ON applications (applicant_id);

CREATE TABLE IF NOT EXISTS audit_events (
	id             UUID PRIMARY KEY,
	category       TEXT NOT NULL,
	occurred_at    TIMESTAMPTZ NOT NULL,
	actor_id       UUID,
	actor_role     TEXT NOT NULL DEFAULT '',
	application_id UUID,
	scheme_id      TEXT NOT NULL DEFAULT '',
	action         TEXT NOT NULL,
	decision       TEXT NOT NULL DEFAULT '',
	reason         TEXT NOT NULL DEFAULT '',
	request_id     TEXT NOT NULL DEFAULT ''
);
`
