package repository

import (
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/sysu-ecnc-dev/exam-paper/backend/internal/domain"
)

const questionPaperColumns = `
	id,
	code,
	title,
	subject,
	course,
	duration_minutes,
	total_marks,
	instructions,
	sections,
	publication_date,
	publication_time,
	created_at,
	version
`

// 发布日期和发布时间在数据库中可以为 NULL，统一转换为空字符串
type questionPaperRow struct {
	paper           domain.QuestionPaper
	sections        []byte
	publicationDate sql.NullTime
	publicationTime sql.NullString
}

func (row *questionPaperRow) dst() []any {
	return []any{
		&row.paper.ID,
		&row.paper.Code,
		&row.paper.Title,
		&row.paper.Subject,
		&row.paper.Course,
		&row.paper.DurationMinutes,
		&row.paper.TotalMarks,
		&row.paper.Instructions,
		&row.sections,
		&row.publicationDate,
		&row.publicationTime,
		&row.paper.CreatedAt,
		&row.paper.Version,
	}
}

func (row *questionPaperRow) toDomain() (*domain.QuestionPaper, error) {
	paper := row.paper
	paper.Sections = make([]domain.Section, 0)
	if len(row.sections) > 0 {
		if err := json.Unmarshal(row.sections, &paper.Sections); err != nil {
			return nil, err
		}
	}
	if row.publicationDate.Valid {
		paper.PublicationDate = row.publicationDate.Time.Format("2006-01-02")
	}
	if row.publicationTime.Valid {
		paper.PublicationTime = row.publicationTime.String
	}
	return &paper, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (r *Repository) CreateQuestionPaper(paper *domain.QuestionPaper) error {
	query := `
		INSERT INTO question_papers (
			code,
			title,
			subject,
			course,
			duration_minutes,
			total_marks,
			instructions,
			sections,
			publication_date,
			publication_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, version
	`

	sections, err := json.Marshal(paper.Sections)
	if err != nil {
		return err
	}

	ctx, cancel := r.queryContext()
	defer cancel()

	params := []any{
		paper.Code,
		paper.Title,
		paper.Subject,
		paper.Course,
		paper.DurationMinutes,
		paper.TotalMarks,
		paper.Instructions,
		string(sections),
		nullable(paper.PublicationDate),
		nullable(paper.PublicationTime),
	}
	dst := []any{&paper.ID, &paper.CreatedAt, &paper.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

// GetQuestionPaperByID 按 ID 获取试卷，先查缓存，未命中再查数据库。
// 试卷不存在时返回 sql.ErrNoRows。
func (r *Repository) GetQuestionPaperByID(id int64) (*domain.QuestionPaper, error) {
	if paper, ok := r.getCachedQuestionPaper(id); ok {
		return paper, nil
	}

	query := `SELECT ` + questionPaperColumns + ` FROM question_papers WHERE id = $1`

	ctx, cancel := r.queryContext()
	defer cancel()

	row := &questionPaperRow{}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(row.dst()...); err != nil {
		return nil, err
	}

	paper, err := row.toDomain()
	if err != nil {
		return nil, err
	}

	r.fillQuestionPaperCache(paper)

	return paper, nil
}

func (r *Repository) GetAllQuestionPapers() ([]*domain.QuestionPaper, error) {
	query := `SELECT ` + questionPaperColumns + ` FROM question_papers ORDER BY publication_date NULLS LAST, publication_time, id`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	papers := []*domain.QuestionPaper{}
	for rows.Next() {
		row := &questionPaperRow{}
		if err := rows.Scan(row.dst()...); err != nil {
			return nil, err
		}
		paper, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		papers = append(papers, paper)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return papers, nil
}

// UpdateQuestionPaper 使用 version 做乐观锁，版本不一致时返回 sql.ErrNoRows
func (r *Repository) UpdateQuestionPaper(paper *domain.QuestionPaper) error {
	query := `
		UPDATE question_papers
		SET
			title = $1,
			subject = $2,
			course = $3,
			duration_minutes = $4,
			total_marks = $5,
			instructions = $6,
			sections = $7,
			publication_date = $8,
			publication_time = $9,
			version = version + 1
		WHERE id = $10 AND version = $11
		RETURNING version
	`

	sections, err := json.Marshal(paper.Sections)
	if err != nil {
		return err
	}

	ctx, cancel := r.queryContext()
	defer cancel()

	params := []any{
		paper.Title,
		paper.Subject,
		paper.Course,
		paper.DurationMinutes,
		paper.TotalMarks,
		paper.Instructions,
		string(sections),
		nullable(paper.PublicationDate),
		nullable(paper.PublicationTime),
		paper.ID,
		paper.Version,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&paper.Version); err != nil {
		return err
	}

	r.storeQuestionPaper(paper)

	return nil
}

func (r *Repository) DeleteQuestionPaper(id int64) error {
	query := `
		DELETE FROM question_papers WHERE id = $1
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	r.markQuestionPaperDeleted(id)

	return nil
}

func logCacheError(msg string, id int64, err error) {
	slog.Warn(msg, "questionPaperID", id, "error", err)
}
