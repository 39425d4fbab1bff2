package host

import (
	"encoding/hex"

	pb "github.com/libp2p/go-libp2p-pubsub/pb"
	"lukechampine.com/blake3"
)

// MessageID 按载荷内容计算消息标识
//
// 相同载荷无论由谁发布都得到相同标识，GossipSub 的已见缓存据此去重。
func MessageID(msg *pb.Message) string {
	return PayloadID(msg.GetData())
}

// PayloadID 返回载荷的 BLAKE3-256 十六进制摘要
func PayloadID(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
