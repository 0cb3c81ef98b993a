package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/exam-paper/backend/internal/domain"
	"github.com/sysu-ecnc-dev/exam-paper/backend/internal/gate"
	"github.com/sysu-ecnc-dev/exam-paper/backend/internal/utils"
)

// QuestionPaperView 是返回给客户端的试卷，未发布时不包含题目
type QuestionPaperView struct {
	*domain.QuestionPaper
	Visible              bool   `json:"visible"`
	TimeUntilPublication string `json:"timeUntilPublication"`
}

// viewQuestionPaper 使用 gate 判断试卷当前是否可见，管理员不受发布时间限制
func (h *Handler) viewQuestionPaper(r *http.Request, paper *domain.QuestionPaper) QuestionPaperView {
	now := h.now()
	view := QuestionPaperView{
		QuestionPaper:        paper,
		Visible:              gate.IsVisible(paper.Schedule(), now),
		TimeUntilPublication: gate.FormatTimeUntilPublication(paper.Schedule(), now),
	}
	if !view.Visible && !roleFrom(r).Privileged() {
		view.QuestionPaper = paper.Summary()
	}
	return view
}

func (h *Handler) GetAllQuestionPapers(w http.ResponseWriter, r *http.Request) {
	papers, err := h.repository.GetAllQuestionPapers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 列表中只返回试卷的基本信息
	views := make([]QuestionPaperView, len(papers))
	for i, paper := range papers {
		views[i] = h.viewQuestionPaper(r, paper.Summary())
	}

	h.successResponse(w, r, "获取试卷列表成功", views)
}

func (h *Handler) GetQuestionPaper(w http.ResponseWriter, r *http.Request) {
	paper := r.Context().Value(QuestionPaperCtx).(*domain.QuestionPaper)

	view := h.viewQuestionPaper(r, paper)
	if !view.Visible && !roleFrom(r).Privileged() {
		h.failResponse(w, r, "试卷尚未发布", view)
		return
	}

	h.successResponse(w, r, "获取试卷成功", view)
}

type questionPaperRequest struct {
	Title           string           `json:"title" validate:"required,max=255"`
	Subject         string           `json:"subject" validate:"required,max=64"`
	Course          string           `json:"course" validate:"max=64"`
	DurationMinutes int32            `json:"durationMinutes" validate:"required,min=1,max=600"`
	TotalMarks      int32            `json:"totalMarks" validate:"required,min=1"`
	Instructions    string           `json:"instructions"`
	Sections        []domain.Section `json:"sections" validate:"required,min=1"`
	PublicationDate string           `json:"publicationDate" validate:"omitempty,datetime=2006-01-02"`
	PublicationTime string           `json:"publicationTime" validate:"omitempty,datetime=15:04"`
}

func (h *Handler) CreateQuestionPaper(w http.ResponseWriter, r *http.Request) {
	var req questionPaperRequest

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	paper := &domain.QuestionPaper{
		Code:            utils.PaperCode(req.Subject),
		Title:           req.Title,
		Subject:         req.Subject,
		Course:          req.Course,
		DurationMinutes: req.DurationMinutes,
		TotalMarks:      req.TotalMarks,
		Instructions:    req.Instructions,
		Sections:        req.Sections,
		PublicationDate: req.PublicationDate,
		PublicationTime: req.PublicationTime,
	}

	if err := utils.ValidateQuestionPaper(paper); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateQuestionPaper(paper); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "question_papers_code_key":
				h.errorResponse(w, r, "试卷编号已存在，请重试")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建试卷成功", paper)
}

func (h *Handler) UpdateQuestionPaper(w http.ResponseWriter, r *http.Request) {
	paper := r.Context().Value(QuestionPaperCtx).(*domain.QuestionPaper)

	var req struct {
		Title           *string          `json:"title" validate:"omitempty,max=255"`
		Subject         *string          `json:"subject" validate:"omitempty,max=64"`
		Course          *string          `json:"course" validate:"omitempty,max=64"`
		DurationMinutes *int32           `json:"durationMinutes" validate:"omitempty,min=1,max=600"`
		TotalMarks      *int32           `json:"totalMarks" validate:"omitempty,min=1"`
		Instructions    *string          `json:"instructions"`
		Sections        []domain.Section `json:"sections" validate:"omitempty,min=1"`
		PublicationDate *string          `json:"publicationDate" validate:"omitempty,datetime=2006-01-02"`
		PublicationTime *string          `json:"publicationTime" validate:"omitempty,datetime=15:04"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 将输入的参数解析到 paper 中
	if req.Title != nil {
		paper.Title = *req.Title
	}
	if req.Subject != nil {
		paper.Subject = *req.Subject
	}
	if req.Course != nil {
		paper.Course = *req.Course
	}
	if req.DurationMinutes != nil {
		paper.DurationMinutes = *req.DurationMinutes
	}
	if req.TotalMarks != nil {
		paper.TotalMarks = *req.TotalMarks
	}
	if req.Instructions != nil {
		paper.Instructions = *req.Instructions
	}
	if req.Sections != nil {
		paper.Sections = req.Sections
	}
	// 发布日期和发布时间传入空字符串表示取消发布安排
	if req.PublicationDate != nil {
		paper.PublicationDate = *req.PublicationDate
	}
	if req.PublicationTime != nil {
		paper.PublicationTime = *req.PublicationTime
	}

	if err := utils.ValidateQuestionPaper(paper); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateQuestionPaper(paper); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "试卷已被修改，请刷新后重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新试卷成功", paper)
}

func (h *Handler) DeleteQuestionPaper(w http.ResponseWriter, r *http.Request) {
	paper := r.Context().Value(QuestionPaperCtx).(*domain.QuestionPaper)

	if err := h.repository.DeleteQuestionPaper(paper.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除试卷成功", nil)
}
