package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/sysu-ecnc-dev/exam-paper/backend/internal/domain"
)

//go:embed templates/*.html
var templatesFS embed.FS

var printTemplate = template.Must(template.New("print_question_paper.html").Funcs(template.FuncMap{
	"add1":   func(i int) int { return i + 1 },
	"option": func(i int) string { return string(rune('A' + i)) },
}).ParseFS(templatesFS, "templates/print_question_paper.html"))

type printPage struct {
	Paper     *domain.QuestionPaper
	Visible   bool
	Countdown string
	PrintedAt string
}

// PrintQuestionPaper 渲染可打印的试卷页面，试卷未发布时只显示倒计时
func (h *Handler) PrintQuestionPaper(w http.ResponseWriter, r *http.Request) {
	paper := r.Context().Value(QuestionPaperCtx).(*domain.QuestionPaper)

	view := h.viewQuestionPaper(r, paper)
	page := printPage{
		Paper:     view.QuestionPaper,
		Visible:   view.Visible || roleFrom(r).Privileged(),
		Countdown: view.TimeUntilPublication,
		PrintedAt: h.now().Format("2006-01-02 15:04"),
	}

	// 先渲染到缓冲区，避免模板出错时向客户端写出半个页面
	buf := &bytes.Buffer{}
	if err := printTemplate.Execute(buf, page); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logInternalServerError(r, err)
	}
}
