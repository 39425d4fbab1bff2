// Package identity 管理节点身份密钥的生成与持久化
//
// 身份文件是一个 JSON 对象，identity 字段为 libp2p protobuf 编码的私钥，
// 以数字数组形式保存：
//
//	{"identity":[8,1,18,64,...]}
//
// LoadOrCreate 实现命令行的身份流程：文件存在则加载，损坏时记录警告并
// 使用新生成的身份（不覆盖原文件）；文件不存在则生成并保存。
package identity
