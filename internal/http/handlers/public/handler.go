package public

import "github.com/orderflow-next/internal/provider"

// Handler 顾客侧接口处理器入口
// 说明：该处理器仅用于顾客下单、查看、取消与确认收货。
type Handler struct {
	*provider.Container
}

// New 创建顾客侧处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
