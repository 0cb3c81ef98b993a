package utils

import (
	"errors"
	"fmt"

	"github.com/sysu-ecnc-dev/exam-paper/backend/internal/domain"
	"github.com/sysu-ecnc-dev/exam-paper/backend/internal/gate"
)

func ValidateQuestionPaper(paper *domain.QuestionPaper) error {
	// 发布日期和发布时间要么同时填写，要么同时为空
	if (paper.PublicationDate == "") != (paper.PublicationTime == "") {
		return errors.New("发布日期和发布时间必须同时填写")
	}
	if paper.PublicationDate != "" {
		if _, err := gate.Instant(paper.Schedule(), nil); err != nil {
			return err
		}
	}

	for i, section := range paper.Sections {
		if len(section.Questions) == 0 {
			return fmt.Errorf("第 %d 部分没有题目", i+1)
		}
		for j, question := range section.Questions {
			if question.Marks <= 0 {
				return fmt.Errorf("第 %d 部分第 %d 题的分值必须大于 0", i+1, j+1)
			}
		}
	}

	if marks := paper.SectionMarks(); marks != paper.TotalMarks {
		return fmt.Errorf("各题分值之和 %d 与总分 %d 不一致", marks, paper.TotalMarks)
	}

	return nil
}
