package admin

import "github.com/orderflow-next/internal/provider"

// Handler 门店员工接口处理器入口
// 说明：该处理器仅用于员工侧 API，门店范围取自令牌。
type Handler struct {
	*provider.Container
}

// New 创建员工处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
