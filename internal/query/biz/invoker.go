package biz

import (
	"context"
	"fmt"

	logctx "github.com/kart-io/usrsp-rag/pkg/infra/logger"
	"github.com/kart-io/usrsp-rag/pkg/llm"
)

// Invoker 将组装好的提示词发送给对话模型。
type Invoker struct {
	chat llm.ChatProvider
}

// NewInvoker 创建模型调用器。
func NewInvoker(chat llm.ChatProvider) *Invoker {
	return &Invoker{chat: chat}
}

// Invoke 发送单次补全请求（无系统提示词），阻塞直到返回完整文本。
// 不做重试；空文本原样返回。
func (i *Invoker) Invoke(ctx context.Context, prompt string) (string, error) {
	text, err := i.chat.Generate(ctx, prompt, "")
	if err != nil {
		return "", fmt.Errorf("model invocation failed (%s): %w", i.chat.Name(), err)
	}
	logctx.GetLogger(ctx).Debugw("model response received", "provider", i.chat.Name(), "length", len(text))
	return text, nil
}
