package utils

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/sysu-ecnc-dev/exam-paper/backend/internal/domain"
	"github.com/sysu-ecnc-dev/exam-paper/backend/internal/gate"
)

func TestSubjectInitials(t *testing.T) {
	cases := map[string]string{
		"高等数学":     "GDSX",
		"数据结构":     "SJJG",
		"Math 101": "MATH101",
		"大学英语B":    "DXYYB",
		"":         "",
	}
	for in, want := range cases {
		if got := SubjectInitials(in); got != want {
			t.Errorf("%q: 期望 %q，实际 %q", in, want, got)
		}
	}
}

func TestPaperCode(t *testing.T) {
	code := PaperCode("高等数学")
	if !regexp.MustCompile(`^GDSX-\d{4}$`).MatchString(code) {
		t.Errorf("试卷编号格式错误: %s", code)
	}

	if code := PaperCode("（）"); !strings.HasPrefix(code, "PAPER-") {
		t.Errorf("无法提取首字母时应使用 PAPER 前缀，实际 %s", code)
	}
}

func TestGenerateRandomQuestionPaper(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 50; i++ {
		paper := GenerateRandomQuestionPaper(now)
		if err := ValidateQuestionPaper(paper); err != nil {
			t.Fatalf("随机试卷应通过校验: %v (%+v)", err, paper)
		}
		if paper.PublicationDate == "" {
			continue
		}
		instant, err := gate.Instant(paper.Schedule(), time.UTC)
		if err != nil {
			t.Fatalf("随机试卷的发布时刻应可解析: %v", err)
		}
		if d := instant.Sub(now); d < -8*24*time.Hour || d > 8*24*time.Hour {
			t.Errorf("发布时刻超出范围: %v", instant)
		}
	}
}

func validPaper() *domain.QuestionPaper {
	return &domain.QuestionPaper{
		Title:           "高等数学期末考试",
		TotalMarks:      15,
		PublicationDate: "2024-06-01",
		PublicationTime: "09:00",
		Sections: []domain.Section{
			{Name: "选择题", Questions: []domain.Question{{Text: "q1", Marks: 5}, {Text: "q2", Marks: 10}}},
		},
	}
}

func TestValidateQuestionPaper(t *testing.T) {
	if err := ValidateQuestionPaper(validPaper()); err != nil {
		t.Errorf("合法试卷应通过校验: %v", err)
	}

	unscheduled := validPaper()
	unscheduled.PublicationDate, unscheduled.PublicationTime = "", ""
	if err := ValidateQuestionPaper(unscheduled); err != nil {
		t.Errorf("未安排发布的试卷应通过校验: %v", err)
	}

	cases := map[string]func(p *domain.QuestionPaper){
		"只有发布日期": func(p *domain.QuestionPaper) { p.PublicationTime = "" },
		"只有发布时间": func(p *domain.QuestionPaper) { p.PublicationDate = "" },
		"发布时间越界": func(p *domain.QuestionPaper) { p.PublicationTime = "25:00" },
		"发布日期非法": func(p *domain.QuestionPaper) { p.PublicationDate = "明天" },
		"总分不一致":  func(p *domain.QuestionPaper) { p.TotalMarks = 100 },
		"空的部分":   func(p *domain.QuestionPaper) { p.Sections = append(p.Sections, domain.Section{Name: "空"}) },
		"分值为零":   func(p *domain.QuestionPaper) { p.Sections[0].Questions[0].Marks = 0 },
	}
	for name, mutate := range cases {
		p := validPaper()
		mutate(p)
		if err := ValidateQuestionPaper(p); err == nil {
			t.Errorf("%s: 期望校验失败", name)
		}
	}
}
