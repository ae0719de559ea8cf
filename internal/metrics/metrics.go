package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultNamespace = "orderflow"

// Recorder 订单流转相关指标
// 所有方法在接收者为 nil 时为空操作，便于测试与关闭指标时直接传 nil。
type Recorder struct {
	registry *prometheus.Registry

	bulkApplies       *prometheus.CounterVec
	bulkAffected      *prometheus.CounterVec
	rollbacks         *prometheus.CounterVec
	rollbackReverted  prometheus.Counter
	rollbackSkipped   prometheus.Counter
	transitions       *prometheus.CounterVec
	transitionRejects *prometheus.CounterVec
	ordersCreated     prometheus.Counter
	tasksProcessed    *prometheus.CounterVec
}

// NewRecorder 创建并注册指标（使用独立 registry）
func NewRecorder(namespace string) *Recorder {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		namespace = defaultNamespace
	}
	registry := prometheus.NewRegistry()
	r := &Recorder{
		registry: registry,
		bulkApplies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bulk",
			Name:      "applies_total",
			Help:      "Bulk transitions applied, by action and outcome.",
		}, []string{"action", "outcome"}),
		bulkAffected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bulk",
			Name:      "affected_orders_total",
			Help:      "Orders moved by bulk transitions.",
		}, []string{"action"}),
		rollbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rollback",
			Name:      "operations_total",
			Help:      "Rollback attempts, by outcome.",
		}, []string{"outcome"}),
		rollbackReverted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rollback",
			Name:      "reverted_orders_total",
			Help:      "Orders restored to their previous status by rollbacks.",
		}),
		rollbackSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rollback",
			Name:      "skipped_orders_total",
			Help:      "Orders skipped by rollbacks because their status drifted.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "order",
			Name:      "transitions_total",
			Help:      "Single order status transitions, by source.",
		}, []string{"source", "to"}),
		transitionRejects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "order",
			Name:      "rejections_total",
			Help:      "Rejected lifecycle requests, by error code.",
		}, []string{"code"}),
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "order",
			Name:      "created_total",
			Help:      "Orders created.",
		}),
		tasksProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "tasks_total",
			Help:      "Async tasks handled by the worker, by type and outcome.",
		}, []string{"task", "outcome"}),
	}
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.bulkApplies,
		r.bulkAffected,
		r.rollbacks,
		r.rollbackReverted,
		r.rollbackSkipped,
		r.transitions,
		r.transitionRejects,
		r.ordersCreated,
		r.tasksProcessed,
	)
	return r
}

// Registry 返回底层 registry
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler 返回 /metrics 处理器
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// BulkApplied 记录一次批量流转
func (r *Recorder) BulkApplied(action string, affected int) {
	if r == nil {
		return
	}
	outcome := "applied"
	if affected == 0 {
		outcome = "empty"
	}
	r.bulkApplies.WithLabelValues(action, outcome).Inc()
	if affected > 0 {
		r.bulkAffected.WithLabelValues(action).Add(float64(affected))
	}
}

// BulkFailed 记录批量流转失败
func (r *Recorder) BulkFailed(action string) {
	if r == nil {
		return
	}
	r.bulkApplies.WithLabelValues(action, "failed").Inc()
}

// RollbackCompleted 记录一次回滚
func (r *Recorder) RollbackCompleted(reverted, skipped int) {
	if r == nil {
		return
	}
	r.rollbacks.WithLabelValues("completed").Inc()
	r.rollbackReverted.Add(float64(reverted))
	r.rollbackSkipped.Add(float64(skipped))
}

// RollbackRejected 记录回滚被拒绝
func (r *Recorder) RollbackRejected(code string) {
	if r == nil {
		return
	}
	r.rollbacks.WithLabelValues(code).Inc()
}

// Transition 记录单笔状态流转
func (r *Recorder) Transition(source, to string) {
	if r == nil {
		return
	}
	r.transitions.WithLabelValues(source, to).Inc()
}

// Rejected 记录生命周期请求被拒绝
func (r *Recorder) Rejected(code string) {
	if r == nil {
		return
	}
	r.transitionRejects.WithLabelValues(code).Inc()
}

// OrderCreated 记录订单创建
func (r *Recorder) OrderCreated() {
	if r == nil {
		return
	}
	r.ordersCreated.Inc()
}

// TaskHandled 记录异步任务处理结果
func (r *Recorder) TaskHandled(task string, err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.tasksProcessed.WithLabelValues(task, outcome).Inc()
}
