// Package offer 定义 offer 的格式约束与校验
//
// offer 是 bech32 / bech32m 编码的文本（例如 "offer1qqr83wcuu2r..."），
// 提交时只校验两件事：
//
//   - 字节长度不超过 MaxSize（300 KiB）
//   - 能按 bech32 解码（不限制 90 字符的标准长度）
//
// 校验通过后以原始字符串字节的形式交给传播层发送。
package offer
