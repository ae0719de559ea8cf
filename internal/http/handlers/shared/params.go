package shared

import (
	"strconv"
	"strings"
	"time"
)

// ParseTimeNullable 解析 RFC3339 时间，空串返回 nil
func ParseTimeNullable(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// ParseUintParam 解析正整数 ID
func ParseUintParam(raw string) (uint, bool) {
	parsed, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || parsed == 0 {
		return 0, false
	}
	return uint(parsed), true
}

// 分页默认值与上限
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// NormalizePagination 归一化分页参数
func NormalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize <= 0:
		pageSize = DefaultPageSize
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// ParsePage 读取 page / page_size 查询参数并归一化，非法值按默认处理
func ParsePage(page, pageSize string) (int, int) {
	p, _ := strconv.Atoi(strings.TrimSpace(page))
	ps, _ := strconv.Atoi(strings.TrimSpace(pageSize))
	return NormalizePagination(p, ps)
}
