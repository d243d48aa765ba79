package salarystore

const schema = `
CREATE TABLE IF NOT EXISTS salary_reports (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    role        TEXT NOT NULL,
    seniority   TEXT NOT NULL,
    country     TEXT NOT NULL DEFAULT '',
    company     TEXT NOT NULL DEFAULT '',
    amount      REAL NOT NULL,
    currency    TEXT NOT NULL DEFAULT '',
    reported_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_salary_role ON salary_reports(role, seniority);
CREATE INDEX IF NOT EXISTS idx_salary_reported ON salary_reports(reported_at);
`
