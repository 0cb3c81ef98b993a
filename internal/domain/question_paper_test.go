package domain

import (
	"testing"
)

func samplePaper() *QuestionPaper {
	return &QuestionPaper{
		ID:              1,
		Title:           "高等数学期末考试",
		TotalMarks:      30,
		PublicationDate: "2024-06-01",
		PublicationTime: "09:00",
		Sections: []Section{
			{Name: "选择题", Questions: []Question{{Text: "1+1=?", Marks: 10, Options: []string{"1", "2"}}}},
			{Name: "解答题", Questions: []Question{{Text: "证明", Marks: 20}}},
		},
	}
}

func TestQuestionPaper_Schedule(t *testing.T) {
	s := samplePaper().Schedule()
	if s.PublicationDate != "2024-06-01" || s.PublicationTime != "09:00" {
		t.Errorf("发布安排不一致: %+v", s)
	}
}

func TestQuestionPaper_Summary(t *testing.T) {
	p := samplePaper()
	summary := p.Summary()
	if summary.Sections != nil {
		t.Error("摘要不应包含题目")
	}
	if len(p.Sections) != 2 {
		t.Error("生成摘要不应修改原试卷")
	}
	if summary.Title != p.Title {
		t.Errorf("期望 Title=%s，实际=%s", p.Title, summary.Title)
	}
}

func TestQuestionPaper_SectionMarks(t *testing.T) {
	if got := samplePaper().SectionMarks(); got != 30 {
		t.Errorf("期望 30，实际 %d", got)
	}
}

func TestRole_Privileged(t *testing.T) {
	if !RoleAdmin.Privileged() {
		t.Error("管理员应有特权")
	}
	if RoleTeacher.Privileged() || RoleStudent.Privileged() {
		t.Error("教师和学生不应有特权")
	}
}
