// Package realtime 通过 WebSocket 向浏览器推送数据变更与全局通知
//
// 推送只携带"哪个集合变了"，不携带数据本身；客户端收到后按自己的权限重新拉取。
package realtime

import (
	"encoding/json"
	"hash/fnv"
	"sync"
	"time"

	"go.uber.org/zap"

	"school-health/internal/model"
	"school-health/internal/state"
	"school-health/pkg/metrics"
)

// 事件类型
const (
	EventCollectionChanged = "collection.changed"
	EventNotification      = "notification"
)

// Event 推送给客户端的消息
type Event struct {
	Type      string          `json:"type"`
	Topic     string          `json:"topic,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// ClientMessage 客户端发来的订阅指令
type ClientMessage struct {
	Action string   `json:"action"` // subscribe | unsubscribe
	Topics []string `json:"topics"`
}

// Client 一个 WebSocket 连接
type Client struct {
	ID     string
	UserID int
	Topics []string
	Send   chan []byte
}

// NewClient 默认订阅全部集合
func NewClient(id string, userID int) *Client {
	topics := make([]string, 0, len(model.Collections))
	for _, c := range model.Collections {
		topics = append(topics, string(c))
	}
	return &Client{ID: id, UserID: userID, Topics: topics, Send: make(chan []byte, 64)}
}

// Hub 连接管理；所有操作由 RWMutex 保护
type Hub struct {
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu      sync.RWMutex
	clients map[string]map[*Client]struct{} // topic -> clients
	all     map[*Client]struct{}

	smu    sync.Mutex
	hashes map[model.Collection]uint64
}

// NewHub m 可以为 nil
func NewHub(logger *zap.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		logger:  logger,
		metrics: m,
		clients: make(map[string]map[*Client]struct{}),
		all:     make(map[*Client]struct{}),
		hashes:  make(map[model.Collection]uint64),
	}
}

// Attach 订阅控制器的快照与通知
func (h *Hub) Attach(c *state.Controller) {
	c.OnChange(h.OnSnapshot)
	c.OnNotify(h.OnNotification)
}

// ────────────────────── 连接管理 ──────────────────────

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.all[client] = struct{}{}
	h.subscribeLocked(client, client.Topics)
	n := len(h.all)
	h.mu.Unlock()

	h.metrics.SetWSClients(n)
}

// Unregister 移除连接并关闭其发送通道，重复调用无副作用
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.all[client]; !ok {
		h.mu.Unlock()
		return
	}
	for _, topic := range client.Topics {
		if subs, ok := h.clients[topic]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.clients, topic)
			}
		}
	}
	delete(h.all, client)
	close(client.Send)
	n := len(h.all)
	h.mu.Unlock()

	h.metrics.SetWSClients(n)
}

func (h *Hub) subscribeLocked(client *Client, topics []string) {
	for _, topic := range topics {
		if h.clients[topic] == nil {
			h.clients[topic] = make(map[*Client]struct{})
		}
		h.clients[topic][client] = struct{}{}
	}
}

// ProcessMessage 处理订阅 / 退订；未知集合名忽略
func (h *Hub) ProcessMessage(client *Client, msg ClientMessage) {
	topics := make([]string, 0, len(msg.Topics))
	for _, t := range msg.Topics {
		if model.Collection(t).Valid() {
			topics = append(topics, t)
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.all[client]; !ok {
		return
	}

	switch msg.Action {
	case "subscribe":
		var added []string
		for _, t := range topics {
			if _, ok := h.clients[t][client]; !ok {
				added = append(added, t)
			}
		}
		h.subscribeLocked(client, added)
		client.Topics = append(client.Topics, added...)
	case "unsubscribe":
		remove := make(map[string]struct{}, len(topics))
		for _, t := range topics {
			remove[t] = struct{}{}
			if subs, ok := h.clients[t]; ok {
				delete(subs, client)
				if len(subs) == 0 {
					delete(h.clients, t)
				}
			}
		}
		kept := client.Topics[:0]
		for _, t := range client.Topics {
			if _, rm := remove[t]; !rm {
				kept = append(kept, t)
			}
		}
		client.Topics = kept
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.all)
}

func (h *Hub) TopicCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}

// ────────────────────── 推送 ──────────────────────

// OnSnapshot 比较各集合的内容摘要，只为发生变化的集合推送事件
func (h *Hub) OnSnapshot(snap model.Snapshot) {
	var changed []model.Collection

	h.smu.Lock()
	for _, c := range model.Collections {
		sum, err := digest(snap.Collection(c))
		if err != nil {
			h.logger.Warn("计算集合摘要失败", zap.String("collection", string(c)), zap.Error(err))
			continue
		}
		if prev, ok := h.hashes[c]; !ok || prev != sum {
			h.hashes[c] = sum
			changed = append(changed, c)
		}
	}
	h.smu.Unlock()

	now := time.Now()
	for _, c := range changed {
		h.Broadcast(string(c), Event{Type: EventCollectionChanged, Topic: string(c), Timestamp: now})
	}
}

// OnNotification 全局通知发给所有连接
func (h *Hub) OnNotification(n state.Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		h.logger.Warn("序列化通知失败", zap.Error(err))
		return
	}
	h.BroadcastAll(Event{Type: EventNotification, Timestamp: n.Time, Data: data})
}

// Broadcast 发送给订阅了 topic 的连接
func (h *Hub) Broadcast(topic string, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Warn("序列化事件失败", zap.Error(err))
		return
	}
	h.mu.RLock()
	var slow []*Client
	for client := range h.clients[topic] {
		if !h.trySend(client, data) {
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()
	h.dropSlow(slow)
}

// BroadcastAll 发送给全部连接
func (h *Hub) BroadcastAll(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Warn("序列化事件失败", zap.Error(err))
		return
	}
	h.mu.RLock()
	var slow []*Client
	for client := range h.all {
		if !h.trySend(client, data) {
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()
	h.dropSlow(slow)
}

func (h *Hub) trySend(client *Client, data []byte) bool {
	select {
	case client.Send <- data:
		return true
	default:
		return false
	}
}

// dropSlow 缓冲区已满的连接会错过变更事件，直接断开，客户端重连后重新拉取
func (h *Hub) dropSlow(clients []*Client) {
	for _, c := range clients {
		h.logger.Warn("客户端发送缓冲已满，断开连接",
			zap.String("client_id", c.ID),
			zap.Int("user_id", c.UserID),
		)
		h.metrics.IncWSSlowClient()
		h.Unregister(c)
	}
}

// Close 断开全部连接
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.all))
	for c := range h.all {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	for _, c := range clients {
		h.Unregister(c)
	}
}

func digest(v any) (uint64, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	f := fnv.New64a()
	f.Write(b)
	return f.Sum64(), nil
}
