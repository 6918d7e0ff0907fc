// Package biz 实现客户问答流水线：记录查询、相似度检索、提示词组装、
// 模型调用与结果输出。各阶段通过接口注入，便于替换后端和测试。
package biz
