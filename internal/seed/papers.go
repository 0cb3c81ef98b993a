package seed

import (
	"log/slog"
	"time"

	"github.com/sysu-ecnc-dev/exam-paper/backend/internal/domain"
	"github.com/sysu-ecnc-dev/exam-paper/backend/internal/utils"
)

type QuestionPaperCreator interface {
	CreateQuestionPaper(paper *domain.QuestionPaper) error
}

// SeedQuestionPapers 插入 n 份随机试卷，返回成功插入的数量
func SeedQuestionPapers(store QuestionPaperCreator, n int, now time.Time) int {
	cnt := 0
	for i := 0; i < n; i++ {
		paper := utils.GenerateRandomQuestionPaper(now)
		if err := store.CreateQuestionPaper(paper); err != nil {
			slog.Error("无法插入试卷", "code", paper.Code, "error", err)
			continue
		}
		cnt++
	}
	return cnt
}
