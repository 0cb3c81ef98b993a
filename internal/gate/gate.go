// Package gate 根据试卷的发布日期与发布时间判断试卷在某一时刻是否可见。
//
// 所有函数都是纯函数，当前时间由调用方显式传入。
package gate

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Buffer 是可见性判断的宽限时间，用于容忍客户端与设置发布时间一方之间的时钟偏差
const Buffer = time.Minute

var (
	ErrMissingField  = errors.New("发布日期或发布时间缺失")
	ErrMalformedTime = errors.New("发布时间格式错误")
	ErrMalformedDate = errors.New("发布日期格式错误")
)

// Schedule 是试卷的发布安排，空字符串表示该字段缺失
type Schedule struct {
	PublicationDate string `json:"publicationDate"`
	PublicationTime string `json:"publicationTime"`
}

// Remaining 是距离发布还剩余的时间
type Remaining struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	time.DateTime,
	"2006/01/02",
}

// ParseTime 将 HH:MM 格式（24 小时制，可不补零）的字符串解析为小时和分钟
func ParseTime(s string) (int, int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}

	return hours, minutes, nil
}

// ParseDate 按常见的日期格式依次尝试解析发布日期
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
}

// Instant 计算发布时刻：取发布日期的年月日，时分取自发布时间，秒和纳秒置零
func Instant(s Schedule, loc *time.Location) (time.Time, error) {
	if s.PublicationDate == "" || s.PublicationTime == "" {
		return time.Time{}, ErrMissingField
	}

	hours, minutes, err := ParseTime(s.PublicationTime)
	if err != nil {
		return time.Time{}, err
	}

	date, err := ParseDate(s.PublicationDate)
	if err != nil {
		return time.Time{}, err
	}

	if loc == nil {
		loc = time.Local
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, hours, minutes, 0, 0, loc), nil
}

// instantAt 计算发布时刻，缺失字段之外的错误都会被记录
func instantAt(s Schedule, now time.Time) (time.Time, bool) {
	instant, err := Instant(s, now.Location())
	if err != nil {
		if !errors.Is(err, ErrMissingField) {
			slog.Warn("无法计算试卷发布时刻", "publicationDate", s.PublicationDate, "publicationTime", s.PublicationTime, "error", err)
		}
		return time.Time{}, false
	}
	return instant, true
}

// IsVisible 判断试卷在 now 时刻是否可见。
// 在发布时刻前 Buffer 以内即视为可见；任何缺失或错误的输入都视为不可见。
func IsVisible(s Schedule, now time.Time) bool {
	instant, ok := instantAt(s, now)
	if !ok {
		return false
	}
	return !now.Before(instant.Add(-Buffer))
}

// TimeUntilPublication 计算距离发布时刻的剩余时间。
// 这里不考虑 Buffer，因此在临界点附近可能与 IsVisible 相差至多一分钟。
func TimeUntilPublication(s Schedule, now time.Time) (Remaining, bool) {
	instant, ok := instantAt(s, now)
	if !ok {
		return Remaining{}, false
	}

	diff := instant.Sub(now)
	if diff <= 0 {
		return Remaining{}, false
	}

	return Remaining{
		Hours:   int(diff / time.Hour),
		Minutes: int((diff % time.Hour) / time.Minute),
	}, true
}

// FormatRemaining 将剩余时间格式化为 "2h 5m" 或 "5m"
func FormatRemaining(r Remaining) string {
	if r.Hours > 0 {
		return fmt.Sprintf("%dh %dm", r.Hours, r.Minutes)
	}
	return fmt.Sprintf("%dm", r.Minutes)
}

// FormatTimeUntilPublication 返回可用于倒计时展示的剩余时间，已发布或输入无效时返回空字符串
func FormatTimeUntilPublication(s Schedule, now time.Time) string {
	r, ok := TimeUntilPublication(s, now)
	if !ok {
		return ""
	}
	return FormatRemaining(r)
}
