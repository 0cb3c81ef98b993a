package domain

import (
	"time"

	"github.com/sysu-ecnc-dev/exam-paper/backend/internal/gate"
)

type Question struct {
	Text    string   `json:"text"`
	Marks   int32    `json:"marks"`
	Options []string `json:"options,omitempty"` // 选择题的选项，主观题为空
}

type Section struct {
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}

type QuestionPaper struct {
	ID              int64     `json:"id"`
	Code            string    `json:"code"`
	Title           string    `json:"title"`
	Subject         string    `json:"subject"`
	Course          string    `json:"course"`
	DurationMinutes int32     `json:"durationMinutes"`
	TotalMarks      int32     `json:"totalMarks"`
	Instructions    string    `json:"instructions"`
	Sections        []Section `json:"sections"`
	PublicationDate string    `json:"publicationDate"` // 为空表示未安排发布
	PublicationTime string    `json:"publicationTime"` // HH:MM，24 小时制
	CreatedAt       time.Time `json:"createdAt"`
	Version         int32     `json:"-"`
}

func (p *QuestionPaper) Schedule() gate.Schedule {
	return gate.Schedule{
		PublicationDate: p.PublicationDate,
		PublicationTime: p.PublicationTime,
	}
}

// Summary 返回不包含题目的试卷副本
func (p *QuestionPaper) Summary() *QuestionPaper {
	summary := *p
	summary.Sections = nil
	return &summary
}

// SectionMarks 计算所有题目的分值之和
func (p *QuestionPaper) SectionMarks() int32 {
	var total int32
	for _, section := range p.Sections {
		for _, question := range section.Questions {
			total += question.Marks
		}
	}
	return total
}
