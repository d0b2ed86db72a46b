package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/stresssense/stresssense/internal/models"
)

// SQLiteStore implements every service store interface over a single
// SQLite database. Timestamps are stored as RFC3339 UTC strings.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const timeLayout = time.RFC3339

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored timestamp %q: %w", s, err)
	}
	return t, nil
}

func toNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func fromNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ---- auth ----

func (s *SQLiteStore) AddOrg(o *models.Org) error {
	_, err := s.db.Exec(`INSERT INTO orgs (id, name, created_at) VALUES (?, ?, ?)`,
		o.ID, o.Name, formatTime(o.CreatedAt))
	return err
}

func (s *SQLiteStore) AddUser(u *models.User) error {
	_, err := s.db.Exec(`INSERT INTO users (id, email, pass_hash, org_id, role, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PassHash, u.OrgID, u.Role, formatTime(u.CreatedAt))
	return err
}

func (s *SQLiteStore) FindUserByEmail(email string) (*models.User, error) {
	row := s.db.QueryRow(`SELECT id, email, pass_hash, org_id, role, created_at FROM users WHERE email = ?`, email)
	var u models.User
	var created string
	if err := row.Scan(&u.ID, &u.Email, &u.PassHash, &u.OrgID, &u.Role, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	createdAt, err := parseTime(created)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = createdAt
	return &u, nil
}

// ---- surveys ----

func (s *SQLiteStore) InsertSurvey(sv *models.Survey) error {
	_, err := s.db.Exec(`INSERT INTO surveys (id, org_id, team_id, title, status, scale_min, scale_max, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sv.ID, sv.OrgID, sv.TeamID, sv.Title, string(sv.Status), sv.ScaleMin, sv.ScaleMax, formatTime(sv.CreatedAt))
	return err
}

func (s *SQLiteStore) GetSurvey(id string) (*models.Survey, error) {
	row := s.db.QueryRow(`SELECT id, org_id, team_id, title, status, scale_min, scale_max, created_at FROM surveys WHERE id = ?`, id)
	return scanSurvey(row)
}

func (s *SQLiteStore) ListSurveys(orgID string) ([]*models.Survey, error) {
	rows, err := s.db.Query(`SELECT id, org_id, team_id, title, status, scale_min, scale_max, created_at
		FROM surveys WHERE org_id = ? ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.Survey
	for rows.Next() {
		sv, err := scanSurvey(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sv)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSurvey(row rowScanner) (*models.Survey, error) {
	var sv models.Survey
	var status, created string
	if err := row.Scan(&sv.ID, &sv.OrgID, &sv.TeamID, &sv.Title, &status, &sv.ScaleMin, &sv.ScaleMax, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	sv.Status = models.SurveyStatus(status)
	createdAt, err := parseTime(created)
	if err != nil {
		return nil, err
	}
	sv.CreatedAt = createdAt
	return &sv, nil
}

func (s *SQLiteStore) UpdateSurveyStatus(id string, status models.SurveyStatus) error {
	_, err := s.db.Exec(`UPDATE surveys SET status = ? WHERE id = ?`, string(status), id)
	return err
}

// ---- questions ----

func (s *SQLiteStore) InsertQuestion(q *models.Question) error {
	_, err := s.db.Exec(`INSERT INTO questions (id, survey_id, type, prompt, scale_min, scale_max, polarity, driver, ord)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.SurveyID, string(q.Type), q.Prompt, q.ScaleMin, q.ScaleMax, string(q.Polarity), string(q.Driver), q.Order)
	return err
}

func (s *SQLiteStore) ListQuestions(surveyID string) ([]*models.Question, error) {
	rows, err := s.db.Query(`SELECT id, survey_id, type, prompt, scale_min, scale_max, polarity, driver, ord
		FROM questions WHERE survey_id = ? ORDER BY ord, id`, surveyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.Question
	for rows.Next() {
		var q models.Question
		var typ, polarity, driver string
		if err := rows.Scan(&q.ID, &q.SurveyID, &typ, &q.Prompt, &q.ScaleMin, &q.ScaleMax, &polarity, &driver, &q.Order); err != nil {
			return nil, err
		}
		q.Type = models.QuestionType(typ)
		q.Polarity = models.Polarity(polarity)
		q.Driver = models.DriverKey(driver)
		out = append(out, &q)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteQuestion(id string) error {
	_, err := s.db.Exec(`DELETE FROM questions WHERE id = ?`, id)
	return err
}

// ---- invites ----

func (s *SQLiteStore) AddInvites(invites []*models.Invite) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	stmt, err := tx.Prepare(`INSERT INTO invites (token, survey_id, email, used_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, inv := range invites {
		if _, err := stmt.Exec(inv.Token, inv.SurveyID, inv.Email, toNullTime(inv.UsedAt)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) CountInvites(surveyID string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM invites WHERE survey_id = ?`, surveyID).Scan(&n)
	return n, err
}

func (s *SQLiteStore) GetInvite(token string) (*models.Invite, error) {
	row := s.db.QueryRow(`SELECT token, survey_id, email, used_at FROM invites WHERE token = ?`, token)
	var inv models.Invite
	var used sql.NullString
	if err := row.Scan(&inv.Token, &inv.SurveyID, &inv.Email, &used); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	usedAt, err := fromNullTime(used)
	if err != nil {
		return nil, err
	}
	inv.UsedAt = usedAt
	return &inv, nil
}

func (s *SQLiteStore) MarkInviteUsed(token string, at time.Time) error {
	_, err := s.db.Exec(`UPDATE invites SET used_at = ? WHERE token = ?`, formatTime(at), token)
	return err
}

// ---- responses ----

func (s *SQLiteStore) AddResponse(r *models.Response) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`INSERT INTO responses (id, survey_id, submitted_at) VALUES (?, ?, ?)`,
		r.ID, r.SurveyID, formatTime(r.SubmittedAt)); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO answers (response_id, question_id, scale_value, text_value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, a := range r.Answers {
		var scale sql.NullInt64
		if a.ScaleValue != nil {
			scale = sql.NullInt64{Int64: int64(*a.ScaleValue), Valid: true}
		}
		if _, err := stmt.Exec(r.ID, a.QuestionID, scale, a.TextValue); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) ListResponses(surveyID string) ([]*models.Response, error) {
	rows, err := s.db.Query(`SELECT id, submitted_at FROM responses WHERE survey_id = ? ORDER BY submitted_at, id`, surveyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.Response
	index := map[string]*models.Response{}
	for rows.Next() {
		var r models.Response
		var submitted string
		if err := rows.Scan(&r.ID, &submitted); err != nil {
			return nil, err
		}
		r.SurveyID = surveyID
		if r.SubmittedAt, err = parseTime(submitted); err != nil {
			return nil, err
		}
		out = append(out, &r)
		index[r.ID] = &r
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	arows, err := s.db.Query(`SELECT a.response_id, a.question_id, a.scale_value, a.text_value
		FROM answers a JOIN responses r ON r.id = a.response_id
		WHERE r.survey_id = ? ORDER BY a.response_id, a.question_id`, surveyID)
	if err != nil {
		return nil, err
	}
	defer arows.Close()
	for arows.Next() {
		var responseID, questionID, textValue string
		var scale sql.NullInt64
		if err := arows.Scan(&responseID, &questionID, &scale, &textValue); err != nil {
			return nil, err
		}
		r, ok := index[responseID]
		if !ok {
			continue
		}
		ans := models.Answer{QuestionID: questionID, TextValue: textValue}
		if scale.Valid {
			v := int(scale.Int64)
			ans.ScaleValue = &v
		}
		r.Answers = append(r.Answers, ans)
	}
	return out, arows.Err()
}

// ---- schedules ----

func (s *SQLiteStore) InsertSchedule(sc *models.Schedule) error {
	_, err := s.db.Exec(`INSERT INTO schedules (id, org_id, template_survey_id, frequency, day_of_week, day_of_month, starts_on, last_run_at, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sc.ID, sc.OrgID, sc.TemplateSurveyID, string(sc.Frequency), int(sc.DayOfWeek), sc.DayOfMonth,
		toNullTime(sc.StartsOn), toNullTime(sc.LastRunAt), boolToInt(sc.Active))
	return err
}

func (s *SQLiteStore) GetSchedule(id string) (*models.Schedule, error) {
	row := s.db.QueryRow(`SELECT id, org_id, template_survey_id, frequency, day_of_week, day_of_month, starts_on, last_run_at, active
		FROM schedules WHERE id = ?`, id)
	sc, err := scanSchedule(row)
	if err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *SQLiteStore) ListSchedules(orgID string) ([]*models.Schedule, error) {
	return s.querySchedules(`SELECT id, org_id, template_survey_id, frequency, day_of_week, day_of_month, starts_on, last_run_at, active
		FROM schedules WHERE org_id = ? ORDER BY id`, orgID)
}

func (s *SQLiteStore) ListActiveSchedules() ([]*models.Schedule, error) {
	return s.querySchedules(`SELECT id, org_id, template_survey_id, frequency, day_of_week, day_of_month, starts_on, last_run_at, active
		FROM schedules WHERE active = 1 ORDER BY id`)
}

func (s *SQLiteStore) querySchedules(query string, args ...any) ([]*models.Schedule, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.Schedule
	for rows.Next() {
		sc, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func scanSchedule(row rowScanner) (*models.Schedule, error) {
	var sc models.Schedule
	var freq string
	var dow, active int
	var startsOn, lastRun sql.NullString
	if err := row.Scan(&sc.ID, &sc.OrgID, &sc.TemplateSurveyID, &freq, &dow, &sc.DayOfMonth, &startsOn, &lastRun, &active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	sc.Frequency = models.Frequency(freq)
	sc.DayOfWeek = time.Weekday(dow)
	starts, err := fromNullTime(startsOn)
	if err != nil {
		return nil, err
	}
	lastRunAt, err := fromNullTime(lastRun)
	if err != nil {
		return nil, err
	}
	sc.StartsOn = starts
	sc.LastRunAt = lastRunAt
	sc.Active = active != 0
	return &sc, nil
}

func (s *SQLiteStore) UpdateSchedule(sc *models.Schedule) error {
	_, err := s.db.Exec(`UPDATE schedules SET frequency = ?, day_of_week = ?, day_of_month = ?, starts_on = ?, active = ? WHERE id = ?`,
		string(sc.Frequency), int(sc.DayOfWeek), sc.DayOfMonth, toNullTime(sc.StartsOn), boolToInt(sc.Active), sc.ID)
	return err
}

func (s *SQLiteStore) DeleteSchedule(id string) error {
	_, err := s.db.Exec(`DELETE FROM schedules WHERE id = ?`, id)
	return err
}

func (s *SQLiteStore) SetScheduleLastRun(id string, at time.Time) error {
	_, err := s.db.Exec(`UPDATE schedules SET last_run_at = ? WHERE id = ?`, formatTime(at), id)
	return err
}

// ---- feedback ----

func (s *SQLiteStore) InsertChannel(c *models.FeedbackChannel) error {
	_, err := s.db.Exec(`INSERT INTO feedback_channels (id, org_id, name, created_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.OrgID, c.Name, formatTime(c.CreatedAt))
	return err
}

func (s *SQLiteStore) GetChannel(id string) (*models.FeedbackChannel, error) {
	row := s.db.QueryRow(`SELECT id, org_id, name, created_at FROM feedback_channels WHERE id = ?`, id)
	var c models.FeedbackChannel
	var created string
	if err := row.Scan(&c.ID, &c.OrgID, &c.Name, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	createdAt, err := parseTime(created)
	if err != nil {
		return nil, err
	}
	c.CreatedAt = createdAt
	return &c, nil
}

func (s *SQLiteStore) ListChannels(orgID string) ([]*models.FeedbackChannel, error) {
	rows, err := s.db.Query(`SELECT id, org_id, name, created_at FROM feedback_channels WHERE org_id = ? ORDER BY created_at`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.FeedbackChannel
	for rows.Next() {
		var c models.FeedbackChannel
		var created string
		if err := rows.Scan(&c.ID, &c.OrgID, &c.Name, &created); err != nil {
			return nil, err
		}
		createdAt, err := parseTime(created)
		if err != nil {
			return nil, err
		}
		c.CreatedAt = createdAt
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) InsertMessage(m *models.FeedbackMessage) error {
	_, err := s.db.Exec(`INSERT INTO feedback_messages (id, channel_id, body, created_at) VALUES (?, ?, ?, ?)`,
		m.ID, m.ChannelID, m.Body, formatTime(m.CreatedAt))
	return err
}

func (s *SQLiteStore) ListMessages(channelID string, limit int) ([]*models.FeedbackMessage, error) {
	rows, err := s.db.Query(`SELECT id, channel_id, body, created_at FROM feedback_messages
		WHERE channel_id = ? ORDER BY created_at DESC LIMIT ?`, channelID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.FeedbackMessage
	for rows.Next() {
		var m models.FeedbackMessage
		var created string
		if err := rows.Scan(&m.ID, &m.ChannelID, &m.Body, &created); err != nil {
			return nil, err
		}
		createdAt, err := parseTime(created)
		if err != nil {
			return nil, err
		}
		m.CreatedAt = createdAt
		out = append(out, &m)
	}
	return out, rows.Err()
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
