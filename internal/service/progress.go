package service

import "time"

// pipeline 阶段名，事件按执行顺序发出
const (
	StageTranslate    = "translate"
	StageScout        = "scout"
	StageCoarseFilter = "coarse_filter"
	StageFineScoring  = "fine_scoring"
)

// EventStatus 阶段事件的状态
type EventStatus string

const (
	// EventStart 阶段开始
	EventStart EventStatus = "start"
	// EventComplete 阶段结束
	EventComplete EventStatus = "complete"
)

// ProgressEvent 进度事件：只报阶段和数量，绝不携带未排完序的榜单数据
type ProgressEvent struct {
	Stage   string
	Status  EventStatus
	Count   int           // 阶段产出的条目数（start 事件为 0）
	Elapsed time.Duration // 阶段耗时（start 事件为 0）
}

// ProgressFunc 进度回调
type ProgressFunc func(ProgressEvent)

// Subscribe 注册进度回调，回调按订阅顺序同步执行
// 不是线程安全的：订阅必须在 ExecuteSearch 之前完成
func (p *PipelineService) Subscribe(fn ProgressFunc) {
	if fn != nil {
		p.subscribers = append(p.subscribers, fn)
	}
}

// emit 同步广播一个进度事件
func (p *PipelineService) emit(event ProgressEvent) {
	for _, fn := range p.subscribers {
		fn(event)
	}
}
