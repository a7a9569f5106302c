/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements both persistence collaborators (garden.Store for content,
  sprouts.Ledger for the point ledger) over one database. In production the
  same patterns apply to PostgreSQL; only minor SQL dialect details differ.

KEY TABLES:
  users, projects (+ project_categories/links/visuals), comments,
  care_actions, join_requests:  content tables
  sprout_reasons:               the points catalog backing table
  sprouts:                      the point ledger (insert and targeted delete only)
  user_sprout_totals:           materialized per-user rollup

LEDGER SEMANTICS:
  Rows in sprouts are never updated. Insert appends; DeleteMatching removes
  the exact rows for (user, reason, related entity) and nothing else.
  Matching zero rows is fine.

ROLLUP MAINTENANCE:
  Every ledger mutation synchronously recomputes that user's rollup row from
  the sprouts table, so Aggregate is one indexed point read. RefreshRollups
  re-materializes every user and runs on a cron schedule as a safety net; the
  rollup is a cache and must always be recomputable from the ledger.

WAL MODE:
  SQLite is opened with WAL so readers don't block the single writer.

SEE ALSO:
  - garden/store/memory.go, sprouts/store/memory.go: in-memory counterparts
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/bloomideas/sprout-engine/garden"
	"github.com/bloomideas/sprout-engine/sprouts"
)

// Store implements garden.Store and sprouts.Ledger over one SQLite database.
type Store struct {
	db *sqlx.DB
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite has a single writer, and each ":memory:" connection is its own
	// database, so one pooled connection is the correct number.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		wallet_address TEXT PRIMARY KEY,
		bloom_username TEXT NOT NULL DEFAULT '',
		created_at     TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS projects (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_address TEXT NOT NULL,
		title         TEXT NOT NULL,
		summary       TEXT NOT NULL DEFAULT '',
		description   TEXT NOT NULL DEFAULT '',
		stage         TEXT NOT NULL DEFAULT 'planted',
		created_at    TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_projects_owner ON projects(owner_address);

	CREATE TABLE IF NOT EXISTS project_categories (
		project_id INTEGER NOT NULL REFERENCES projects(id),
		category   TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS project_links (
		project_id INTEGER NOT NULL REFERENCES projects(id),
		url        TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS project_visuals (
		project_id INTEGER NOT NULL REFERENCES projects(id),
		url        TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS comments (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id   INTEGER NOT NULL REFERENCES projects(id),
		user_address TEXT NOT NULL,
		content      TEXT NOT NULL,
		created_at   TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_comments_project ON comments(project_id);
	CREATE INDEX IF NOT EXISTS idx_comments_project_user
		ON comments(project_id, user_address);

	-- One care action per (project, gardener); a different reaction flips it.
	CREATE TABLE IF NOT EXISTS care_actions (
		project_id   INTEGER NOT NULL REFERENCES projects(id),
		user_address TEXT NOT NULL,
		action       TEXT NOT NULL,
		created_at   TEXT NOT NULL,
		UNIQUE(project_id, user_address)
	);
	CREATE INDEX IF NOT EXISTS idx_care_actions_project ON care_actions(project_id);

	CREATE TABLE IF NOT EXISTS join_requests (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id      INTEGER NOT NULL REFERENCES projects(id),
		builder_address TEXT NOT NULL,
		message         TEXT NOT NULL DEFAULT '',
		status          TEXT NOT NULL DEFAULT 'pending',
		assigned_at     TEXT,
		created_at      TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_join_requests_project ON join_requests(project_id);

	-- Points catalog
	CREATE TABLE IF NOT EXISTS sprout_reasons (
		id   INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	);

	-- The point ledger. Rows are inserted and (on reversal) deleted; never updated.
	CREATE TABLE IF NOT EXISTS sprouts (
		id           TEXT PRIMARY KEY,
		user_address TEXT NOT NULL,
		reason_id    INTEGER NOT NULL REFERENCES sprout_reasons(id),
		amount       INTEGER NOT NULL,
		related_id   INTEGER,
		created_at   TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sprouts_user ON sprouts(user_address);
	-- Hot path for targeted revocation
	CREATE INDEX IF NOT EXISTS idx_sprouts_match
		ON sprouts(user_address, reason_id, related_id);

	-- Materialized per-user rollup; cache of the sprouts table
	CREATE TABLE IF NOT EXISTS user_sprout_totals (
		user_address   TEXT PRIMARY KEY,
		total          INTEGER NOT NULL,
		by_reason_json TEXT NOT NULL,
		refreshed_at   TEXT NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// Seed the catalog with the reasons the engine emits.
	for _, name := range sprouts.AllReasons() {
		if _, err := s.db.Exec(
			`INSERT OR IGNORE INTO sprout_reasons (name) VALUES (?)`, string(name)); err != nil {
			return err
		}
	}
	return nil
}

// LoadCatalog reads the sprout_reasons table into an immutable catalog.
// Called once at startup.
func (s *Store) LoadCatalog(ctx context.Context) (*sprouts.Catalog, error) {
	var rows []struct {
		ID   int64  `db:"id"`
		Name string `db:"name"`
	}
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, name FROM sprout_reasons`); err != nil {
		return nil, fmt.Errorf("load sprout reasons: %w", err)
	}
	codes := make(map[sprouts.ReasonName]sprouts.ReasonCode, len(rows))
	for _, r := range rows {
		codes[sprouts.ReasonName(r.Name)] = sprouts.ReasonCode(r.ID)
	}
	return sprouts.NewCatalog(codes), nil
}

// =============================================================================
// SPROUT LEDGER (sprouts.Ledger interface)
// =============================================================================

type grantRow struct {
	ID        string        `db:"id"`
	User      string        `db:"user_address"`
	ReasonID  int64         `db:"reason_id"`
	Amount    int64         `db:"amount"`
	RelatedID sql.NullInt64 `db:"related_id"`
	CreatedAt string        `db:"created_at"`
}

func (s *Store) Insert(ctx context.Context, grant sprouts.PointGrant) error {
	var related sql.NullInt64
	if grant.RelatedID != nil {
		related = sql.NullInt64{Int64: *grant.RelatedID, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sprouts (id, user_address, reason_id, amount, related_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		grant.ID, string(grant.User), int64(grant.Reason), grant.Amount,
		related, grant.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert grant: %w", err)
	}
	return s.refreshRollup(ctx, grant.User)
}

func (s *Store) DeleteMatching(ctx context.Context, user sprouts.Address, reason sprouts.ReasonCode, relatedID int64) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM sprouts
		WHERE user_address = ? AND reason_id = ? AND related_id = ?`,
		string(user), int64(reason), relatedID)
	if err != nil {
		return fmt.Errorf("delete grants: %w", err)
	}
	return s.refreshRollup(ctx, user)
}

func (s *Store) Aggregate(ctx context.Context, user sprouts.Address) (sprouts.Aggregate, error) {
	var row struct {
		Total        int64  `db:"total"`
		ByReasonJSON string `db:"by_reason_json"`
	}
	err := s.db.GetContext(ctx, &row, `
		SELECT total, by_reason_json FROM user_sprout_totals WHERE user_address = ?`,
		string(user))
	if errors.Is(err, sql.ErrNoRows) {
		// A brand-new gardener has an implicit zero balance.
		return sprouts.Aggregate{User: user, ByReason: map[sprouts.ReasonName]int64{}}, nil
	}
	if err != nil {
		return sprouts.Aggregate{}, fmt.Errorf("read rollup: %w", err)
	}

	byReason := map[sprouts.ReasonName]int64{}
	if err := json.Unmarshal([]byte(row.ByReasonJSON), &byReason); err != nil {
		return sprouts.Aggregate{}, fmt.Errorf("decode rollup: %w", err)
	}
	return sprouts.Aggregate{User: user, Total: row.Total, ByReason: byReason}, nil
}

func (s *Store) Grants(ctx context.Context, user sprouts.Address) ([]sprouts.PointGrant, error) {
	var rows []grantRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_address, reason_id, amount, related_id, created_at
		FROM sprouts WHERE user_address = ? ORDER BY created_at, id`,
		string(user))
	if err != nil {
		return nil, fmt.Errorf("load grants: %w", err)
	}

	grants := make([]sprouts.PointGrant, 0, len(rows))
	for _, r := range rows {
		g := sprouts.PointGrant{
			ID:     r.ID,
			User:   sprouts.Address(r.User),
			Reason: sprouts.ReasonCode(r.ReasonID),
			Amount: r.Amount,
		}
		if r.RelatedID.Valid {
			v := r.RelatedID.Int64
			g.RelatedID = &v
		}
		g.CreatedAt, _ = time.Parse(time.RFC3339, r.CreatedAt)
		grants = append(grants, g)
	}
	return grants, nil
}

// refreshRollup recomputes one user's rollup row from the ledger.
func (s *Store) refreshRollup(ctx context.Context, user sprouts.Address) error {
	var sums []struct {
		Name  string `db:"name"`
		Total int64  `db:"total"`
	}
	err := s.db.SelectContext(ctx, &sums, `
		SELECT r.name AS name, COALESCE(SUM(sp.amount), 0) AS total
		FROM sprouts sp JOIN sprout_reasons r ON r.id = sp.reason_id
		WHERE sp.user_address = ?
		GROUP BY r.name`,
		string(user))
	if err != nil {
		return fmt.Errorf("recompute rollup: %w", err)
	}

	total := int64(0)
	byReason := map[sprouts.ReasonName]int64{}
	for _, row := range sums {
		total += row.Total
		byReason[sprouts.ReasonName(row.Name)] = row.Total
	}
	encoded, err := json.Marshal(byReason)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_sprout_totals (user_address, total, by_reason_json, refreshed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_address) DO UPDATE SET
			total = excluded.total,
			by_reason_json = excluded.by_reason_json,
			refreshed_at = excluded.refreshed_at`,
		string(user), total, string(encoded), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("write rollup: %w", err)
	}
	return nil
}

// RefreshRollups re-materializes the rollup for every known user. Run on a
// schedule; the synchronous per-mutation refresh should keep rollups current,
// this catches anything that slipped through. The user list unions ledger rows
// with existing rollup rows: a user whose last ledger row was deleted must
// still be visited, or a stale non-zero rollup would never heal.
func (s *Store) RefreshRollups(ctx context.Context) (int, error) {
	var users []string
	if err := s.db.SelectContext(ctx, &users, `
		SELECT DISTINCT user_address FROM sprouts
		UNION
		SELECT user_address FROM user_sprout_totals`); err != nil {
		return 0, fmt.Errorf("list ledger users: %w", err)
	}
	for _, u := range users {
		if err := s.refreshRollup(ctx, sprouts.Address(u)); err != nil {
			return 0, err
		}
	}
	return len(users), nil
}

// =============================================================================
// USERS (garden.Store interface)
// =============================================================================

func (s *Store) UpsertUser(ctx context.Context, u garden.User) error {
	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (wallet_address, bloom_username, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(wallet_address) DO UPDATE SET
			bloom_username = CASE WHEN excluded.bloom_username != ''
				THEN excluded.bloom_username ELSE users.bloom_username END`,
		string(u.WalletAddress), u.BloomUsername, createdAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, addr sprouts.Address) (garden.User, error) {
	var row struct {
		WalletAddress string `db:"wallet_address"`
		BloomUsername string `db:"bloom_username"`
		CreatedAt     string `db:"created_at"`
	}
	err := s.db.GetContext(ctx, &row, `
		SELECT wallet_address, bloom_username, created_at FROM users
		WHERE wallet_address = ?`, string(addr))
	if errors.Is(err, sql.ErrNoRows) {
		return garden.User{}, garden.ErrNotFound
	}
	if err != nil {
		return garden.User{}, fmt.Errorf("get user: %w", err)
	}
	u := garden.User{
		WalletAddress: sprouts.Address(row.WalletAddress),
		BloomUsername: row.BloomUsername,
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, row.CreatedAt)
	return u, nil
}

// =============================================================================
// PROJECTS
// =============================================================================

type projectRow struct {
	ID          int64  `db:"id"`
	Owner       string `db:"owner_address"`
	Title       string `db:"title"`
	Summary     string `db:"summary"`
	Description string `db:"description"`
	Stage       string `db:"stage"`
	CreatedAt   string `db:"created_at"`
}

func (r projectRow) toProject() garden.Project {
	p := garden.Project{
		ID:          r.ID,
		Owner:       sprouts.Address(r.Owner),
		Title:       r.Title,
		Summary:     r.Summary,
		Description: r.Description,
		Stage:       garden.Stage(r.Stage),
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, r.CreatedAt)
	return p
}

func (s *Store) CreateProject(ctx context.Context, p *garden.Project) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (owner_address, title, summary, description, stage, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		string(p.Owner), p.Title, p.Summary, p.Description, string(p.Stage),
		p.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return err
	}

	for _, c := range p.Categories {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO project_categories (project_id, category) VALUES (?, ?)`,
			p.ID, c); err != nil {
			return fmt.Errorf("insert category: %w", err)
		}
	}
	for _, link := range p.Links {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO project_links (project_id, url) VALUES (?, ?)`,
			p.ID, link); err != nil {
			return fmt.Errorf("insert link: %w", err)
		}
	}
	for _, v := range p.Visuals {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO project_visuals (project_id, url) VALUES (?, ?)`,
			p.ID, v); err != nil {
			return fmt.Errorf("insert visual: %w", err)
		}
	}
	return nil
}

func (s *Store) GetProject(ctx context.Context, id int64) (garden.Project, error) {
	var row projectRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, owner_address, title, summary, description, stage, created_at
		FROM projects WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return garden.Project{}, garden.ErrNotFound
	}
	if err != nil {
		return garden.Project{}, fmt.Errorf("get project: %w", err)
	}

	p := row.toProject()
	if err := s.loadProjectChildren(ctx, &p); err != nil {
		return garden.Project{}, err
	}
	return p, nil
}

func (s *Store) loadProjectChildren(ctx context.Context, p *garden.Project) error {
	if err := s.db.SelectContext(ctx, &p.Categories,
		`SELECT category FROM project_categories WHERE project_id = ?`, p.ID); err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	if err := s.db.SelectContext(ctx, &p.Links,
		`SELECT url FROM project_links WHERE project_id = ?`, p.ID); err != nil {
		return fmt.Errorf("load links: %w", err)
	}
	if err := s.db.SelectContext(ctx, &p.Visuals,
		`SELECT url FROM project_visuals WHERE project_id = ?`, p.ID); err != nil {
		return fmt.Errorf("load visuals: %w", err)
	}
	return nil
}

func (s *Store) ListProjects(ctx context.Context) ([]garden.Project, error) {
	var rows []projectRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, owner_address, title, summary, description, stage, created_at
		FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	projects := make([]garden.Project, 0, len(rows))
	for _, r := range rows {
		p := r.toProject()
		if err := s.loadProjectChildren(ctx, &p); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func (s *Store) CountProjectsByOwner(ctx context.Context, owner sprouts.Address) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM projects WHERE owner_address = ?`, string(owner))
	if err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return count, nil
}

func (s *Store) SetProjectStage(ctx context.Context, id int64, stage garden.Stage) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET stage = ? WHERE id = ?`, string(stage), id)
	if err != nil {
		return fmt.Errorf("set stage: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return garden.ErrNotFound
	}
	return nil
}

func (s *Store) ProjectCounts(ctx context.Context, id int64) (garden.ProjectCounts, error) {
	var counts garden.ProjectCounts
	err := s.db.GetContext(ctx, &counts.Nurtures, `
		SELECT COUNT(*) FROM care_actions WHERE project_id = ? AND action = 'nurture'`, id)
	if err != nil {
		return counts, fmt.Errorf("count nurtures: %w", err)
	}
	err = s.db.GetContext(ctx, &counts.Neglects, `
		SELECT COUNT(*) FROM care_actions WHERE project_id = ? AND action = 'neglect'`, id)
	if err != nil {
		return counts, fmt.Errorf("count neglects: %w", err)
	}
	err = s.db.GetContext(ctx, &counts.Comments,
		`SELECT COUNT(*) FROM comments WHERE project_id = ?`, id)
	if err != nil {
		return counts, fmt.Errorf("count comments: %w", err)
	}
	err = s.db.GetContext(ctx, &counts.JoinRequests,
		`SELECT COUNT(*) FROM join_requests WHERE project_id = ?`, id)
	if err != nil {
		return counts, fmt.Errorf("count join requests: %w", err)
	}
	return counts, nil
}

// =============================================================================
// CARE ACTIONS
// =============================================================================

func (s *Store) GetCareAction(ctx context.Context, projectID int64, user sprouts.Address) (*sprouts.CareAction, error) {
	var action string
	err := s.db.GetContext(ctx, &action, `
		SELECT action FROM care_actions WHERE project_id = ? AND user_address = ?`,
		projectID, string(user))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get care action: %w", err)
	}
	a := sprouts.CareAction(action)
	return &a, nil
}

func (s *Store) SetCareAction(ctx context.Context, projectID int64, user sprouts.Address, action sprouts.CareAction) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO care_actions (project_id, user_address, action, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(project_id, user_address) DO UPDATE SET action = excluded.action`,
		projectID, string(user), string(action), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("set care action: %w", err)
	}
	return nil
}

func (s *Store) DeleteCareAction(ctx context.Context, projectID int64, user sprouts.Address) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM care_actions WHERE project_id = ? AND user_address = ?`,
		projectID, string(user))
	if err != nil {
		return fmt.Errorf("delete care action: %w", err)
	}
	return nil
}

// =============================================================================
// COMMENTS
// =============================================================================

func (s *Store) CreateComment(ctx context.Context, c *garden.Comment) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (project_id, user_address, content, created_at)
		VALUES (?, ?, ?, ?)`,
		c.ProjectID, string(c.User), c.Content, c.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	c.ID, err = res.LastInsertId()
	return err
}

func (s *Store) ListComments(ctx context.Context, projectID int64) ([]garden.Comment, error) {
	var rows []struct {
		ID        int64  `db:"id"`
		ProjectID int64  `db:"project_id"`
		User      string `db:"user_address"`
		Content   string `db:"content"`
		CreatedAt string `db:"created_at"`
	}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, project_id, user_address, content, created_at
		FROM comments WHERE project_id = ? ORDER BY created_at, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	comments := make([]garden.Comment, 0, len(rows))
	for _, r := range rows {
		c := garden.Comment{
			ID:        r.ID,
			ProjectID: r.ProjectID,
			User:      sprouts.Address(r.User),
			Content:   r.Content,
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339, r.CreatedAt)
		comments = append(comments, c)
	}
	return comments, nil
}

func (s *Store) CountCommentsBy(ctx context.Context, projectID int64, user sprouts.Address) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM comments WHERE project_id = ? AND user_address = ?`,
		projectID, string(user))
	if err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return count, nil
}

// =============================================================================
// JOIN REQUESTS
// =============================================================================

type joinRequestRow struct {
	ID         int64          `db:"id"`
	ProjectID  int64          `db:"project_id"`
	Builder    string         `db:"builder_address"`
	Message    string         `db:"message"`
	Status     string         `db:"status"`
	AssignedAt sql.NullString `db:"assigned_at"`
	CreatedAt  string         `db:"created_at"`
}

func (r joinRequestRow) toJoinRequest() garden.JoinRequest {
	req := garden.JoinRequest{
		ID:        r.ID,
		ProjectID: r.ProjectID,
		Builder:   sprouts.Address(r.Builder),
		Message:   r.Message,
		Status:    garden.JoinStatus(r.Status),
	}
	if r.AssignedAt.Valid {
		if t, err := time.Parse(time.RFC3339, r.AssignedAt.String); err == nil {
			req.AssignedAt = &t
		}
	}
	req.CreatedAt, _ = time.Parse(time.RFC3339, r.CreatedAt)
	return req
}

func (s *Store) CreateJoinRequest(ctx context.Context, r *garden.JoinRequest) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO join_requests (project_id, builder_address, message, status, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		r.ProjectID, string(r.Builder), r.Message, string(r.Status),
		r.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert join request: %w", err)
	}
	r.ID, err = res.LastInsertId()
	return err
}

func (s *Store) GetJoinRequest(ctx context.Context, id int64) (garden.JoinRequest, error) {
	var row joinRequestRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, project_id, builder_address, message, status, assigned_at, created_at
		FROM join_requests WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return garden.JoinRequest{}, garden.ErrNotFound
	}
	if err != nil {
		return garden.JoinRequest{}, fmt.Errorf("get join request: %w", err)
	}
	return row.toJoinRequest(), nil
}

func (s *Store) ListJoinRequests(ctx context.Context, projectID int64) ([]garden.JoinRequest, error) {
	var rows []joinRequestRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, project_id, builder_address, message, status, assigned_at, created_at
		FROM join_requests WHERE project_id = ? ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list join requests: %w", err)
	}
	reqs := make([]garden.JoinRequest, 0, len(rows))
	for _, r := range rows {
		reqs = append(reqs, r.toJoinRequest())
	}
	return reqs, nil
}

func (s *Store) SetJoinRequestStatus(ctx context.Context, id int64, status garden.JoinStatus, assignedAt *time.Time) error {
	var assigned sql.NullString
	if assignedAt != nil {
		assigned = sql.NullString{String: assignedAt.UTC().Format(time.RFC3339), Valid: true}
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE join_requests SET status = ?, assigned_at = ? WHERE id = ?`,
		string(status), assigned, id)
	if err != nil {
		return fmt.Errorf("update join request: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return garden.ErrNotFound
	}
	return nil
}

var (
	_ garden.Store   = (*Store)(nil)
	_ sprouts.Ledger = (*Store)(nil)
)
