// Package provider 定义了所有 LLM provider 的统一接口和共享类型。
// 每个 provider adapter（gemini.go, anthropic.go）实现 Provider 接口，
// 负责将各家 API 的 streaming 响应归一化为统一的 Event 序列。
package provider

import "context"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message 是对话历史中的一条消息
type Message struct {
	Role Role
	Text string
}

// ChatRequest 是发送给 provider 的统一请求格式
type ChatRequest struct {
	Model        string
	Messages     []Message
	SystemPrompt string
	MaxTokens    int
}

type EventType int

const (
	// EventTextDelta: LLM 输出的文本增量，应实时渲染到终端
	EventTextDelta EventType = iota

	// EventDone: 本轮消息结束，附带 token 用量
	EventDone

	// EventError: 发生错误
	EventError
)

// Event 是 provider streaming 输出的统一事件
type Event struct {
	Type EventType

	// EventTextDelta
	TextDelta string

	// EventDone
	Usage *Usage

	// EventError
	Error error
}

// Usage 记录本次 API 调用的 token 消耗
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Provider 是所有 LLM provider 的统一接口。
// 实现者负责：
// 1. 将统一 ChatRequest 转换为该 provider 的 API 请求格式
// 2. 将该 provider 的 streaming 响应转换为统一 Event 序列
// 3. 处理该 provider 特有的错误码
type Provider interface {
	// Chat 发起 streaming 对话。
	// 返回的 channel 会持续发出 Event，直到 EventDone 或 EventError 后关闭。
	// 调用方必须消费完 channel，否则会导致 goroutine 泄漏。
	Chat(ctx context.Context, req *ChatRequest) (<-chan Event, error)

	// Name 返回 provider 标识符，如 "gemini", "anthropic"
	Name() string

	// Models 返回支持的模型列表
	Models() []string

	// DefaultModel 返回默认模型
	DefaultModel() string
}
