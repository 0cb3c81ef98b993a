package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/exam-paper/backend/internal/domain"
)

var digits = "0123456789"

func GenerateRandomDigits(length int) string {
	random_digits := make([]byte, length)
	for i := range random_digits {
		random_digits[i] = digits[rand.Intn(len(digits))]
	}
	return string(random_digits)
}

// SubjectInitials 取科目名称的拼音首字母，非汉字部分保留其中的字母和数字
func SubjectInitials(subject string) string {
	initials := ""
	for _, r := range subject {
		if unicode.Is(unicode.Han, r) {
			py := pinyin.LazyConvert(string(r), nil)
			if len(py) > 0 && py[0] != "" {
				initials += py[0][:1]
			}
			continue
		}
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			initials += string(r)
		}
	}
	return strings.ToUpper(initials)
}

// PaperCode 根据科目生成试卷编号，例如 "高等数学" 生成 "GDSX-0427"
func PaperCode(subject string) string {
	initials := SubjectInitials(subject)
	if initials == "" {
		initials = "PAPER"
	}
	return initials + "-" + GenerateRandomDigits(4)
}

var subjects = []string{
	"高等数学", "线性代数", "概率论与数理统计", "大学物理", "数据结构",
	"操作系统", "计算机网络", "编译原理", "大学英语", "马克思主义基本原理",
}

var sectionNames = []string{"选择题", "填空题", "判断题", "简答题", "计算题", "综合题"}

func generateRandomSection(name string) domain.Section {
	section := domain.Section{
		Name:      name,
		Questions: make([]domain.Question, rand.Intn(5)+1),
	}

	for i := range section.Questions {
		question := domain.Question{
			Text:  fmt.Sprintf("%s第 %d 题（%s）", name, i+1, GenerateRandomDigits(6)),
			Marks: int32(rand.Intn(4)+1) * 5,
		}
		if name == "选择题" {
			question.Options = []string{"A", "B", "C", "D"}
		}
		section.Questions[i] = question
	}

	return section
}

// GenerateRandomQuestionPaper 随机生成一份试卷，发布时间在 now 前后七天之内
func GenerateRandomQuestionPaper(now time.Time) *domain.QuestionPaper {
	subject := subjects[rand.Intn(len(subjects))]

	paper := &domain.QuestionPaper{
		Code:            PaperCode(subject),
		Title:           subject + "期末考试",
		Subject:         subject,
		Course:          subject + "（" + GenerateRandomDigits(3) + "班）",
		DurationMinutes: int32(rand.Intn(3)+2) * 30,
		Instructions:    "请在答题卡上作答，考试结束后试卷与答题卡一并交回。",
	}

	// 随机挑选若干题型，保持题型的先后顺序
	for _, name := range sectionNames {
		if rand.Intn(2) == 0 {
			continue
		}
		paper.Sections = append(paper.Sections, generateRandomSection(name))
	}
	if len(paper.Sections) == 0 {
		paper.Sections = append(paper.Sections, generateRandomSection(sectionNames[0]))
	}
	paper.TotalMarks = paper.SectionMarks()

	// 约五分之一的试卷不安排发布时间
	if rand.Intn(5) != 0 {
		publication := now.AddDate(0, 0, rand.Intn(15)-7)
		paper.PublicationDate = publication.Format(time.DateOnly)
		paper.PublicationTime = fmt.Sprintf("%02d:%02d", rand.Intn(24), rand.Intn(12)*5)
	}

	return paper
}
