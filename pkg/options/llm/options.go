// Package llm provides LLM provider configuration options.
package llm

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/usrsp-rag/pkg/options"
)

var _ options.IOptions = (*ProviderOptions)(nil)

const (
	defaultOllamaURL = "http://localhost:11434"
	defaultOpenAIURL = "https://api.openai.com/v1"
)

// ProviderOptions 定义 LLM 供应商配置。
type ProviderOptions struct {
	// Provider 供应商名称（ollama, openai）。
	Provider string `json:"provider" mapstructure:"provider"`

	// BaseURL API 基础地址，为空时使用供应商默认地址。
	BaseURL string `json:"base-url" mapstructure:"base-url"`

	// APIKey API 密钥（OpenAI 需要）。
	APIKey string `json:"-" mapstructure:"api-key"`

	// Model 使用的模型名称。
	Model string `json:"model" mapstructure:"model"`

	// Timeout 请求超时时间，0 表示不限制。
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// Organization 组织 ID（OpenAI 可选）。
	Organization string `json:"organization" mapstructure:"organization"`
}

// NewEmbeddingOptions 创建默认 Embedding 供应商配置。
func NewEmbeddingOptions() *ProviderOptions {
	return &ProviderOptions{
		Provider: "ollama",
		BaseURL:  defaultOllamaURL,
		Model:    "nomic-embed-text",
		Timeout:  60 * time.Second,
	}
}

// NewChatOptions 创建默认 Chat 供应商配置。
// 生成阶段默认不设超时，等待模型返回完整结果。
func NewChatOptions() *ProviderOptions {
	return &ProviderOptions{
		Provider: "ollama",
		BaseURL:  defaultOllamaURL,
		Model:    "llama2",
	}
}

// AddFlags 注册命令行参数，prefixes 通常为 "embedding" 或 "chat"。
func (o *ProviderOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...)
	fs.StringVar(&o.Provider, p+"provider", o.Provider, "LLM provider name (ollama|openai).")
	fs.StringVar(&o.BaseURL, p+"base-url", o.BaseURL, "Provider API base URL.")
	fs.StringVar(&o.APIKey, p+"api-key", o.APIKey, "Provider API key (or OPENAI_API_KEY).")
	fs.StringVar(&o.Model, p+"model", o.Model, "Model name.")
	fs.DurationVar(&o.Timeout, p+"timeout", o.Timeout, "Request timeout, 0 means no timeout.")
	fs.StringVar(&o.Organization, p+"organization", o.Organization, "Organization ID (openai only).")
}

// Complete 从环境变量补全密钥；切换到 openai 且仍为 Ollama 默认地址时改用官方地址。
func (o *ProviderOptions) Complete() error {
	if o.Provider != "openai" {
		return nil
	}
	if o.APIKey == "" {
		o.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if o.BaseURL == defaultOllamaURL {
		o.BaseURL = defaultOpenAIURL
	}
	return nil
}

// Validate 校验配置。
func (o *ProviderOptions) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Provider == "" {
		errs = append(errs, fmt.Errorf("llm provider is required"))
	}
	if o.Model == "" {
		errs = append(errs, fmt.Errorf("llm model is required for provider %q", o.Provider))
	}
	if o.Timeout < 0 {
		errs = append(errs, fmt.Errorf("llm timeout must not be negative"))
	}
	if o.Provider == "openai" && o.APIKey == "" {
		errs = append(errs, fmt.Errorf("openai provider requires an api key"))
	}
	return errs
}

// ToConfigMap 转换为配置 map，用于供应商工厂。
func (o *ProviderOptions) ToConfigMap() map[string]any {
	return map[string]any{
		"base_url":     o.BaseURL,
		"api_key":      o.APIKey,
		"embed_model":  o.Model,
		"chat_model":   o.Model,
		"timeout":      o.Timeout,
		"organization": o.Organization,
	}
}
