package dns

import (
	"context"
	"fmt"
	"strings"

	mdns "github.com/miekg/dns"
)

// Client 基于 miekg/dns 的 TXT 查询客户端
//
// 按配置顺序依次尝试每个服务器，第一个给出权威应答（成功或 NXDOMAIN）的
// 服务器即为结果。
type Client struct {
	config ClientConfig
	udp    *mdns.Client
	tcp    *mdns.Client
}

// NewClient 创建 DNS 客户端
func NewClient(config ClientConfig) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.UDPSize == 0 {
		config.UDPSize = mdns.DefaultMsgSize
	}
	return &Client{
		config: config,
		udp:    &mdns.Client{Net: "udp", Timeout: config.Timeout, UDPSize: config.UDPSize},
		tcp:    &mdns.Client{Net: "tcp", Timeout: config.Timeout},
	}, nil
}

// NewSystemClient 使用系统 DNS 配置创建客户端
func NewSystemClient() (*Client, error) {
	cfg, err := SystemClientConfig()
	if err != nil {
		return nil, fmt.Errorf("dns: read system config: %w", err)
	}
	return NewClient(cfg)
}

// LookupTXT 查询 TXT 记录
//
// 多段 TXT 字符串按顺序拼接为一条记录。NXDOMAIN 返回空结果而不是错误。
func (c *Client) LookupTXT(ctx context.Context, name string) ([]string, error) {
	msg := new(mdns.Msg)
	msg.SetQuestion(mdns.Fqdn(name), mdns.TypeTXT)
	msg.RecursionDesired = true
	msg.SetEdns0(c.config.UDPSize, false)

	var lastErr error
	for _, server := range c.config.Servers {
		for attempt := 0; attempt < c.config.Attempts; attempt++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			resp, err := c.exchange(ctx, msg, server)
			if err != nil {
				lastErr = err
				logger.Debug("DNS 查询失败", "server", server, "attempt", attempt+1, "error", err)
				continue
			}

			switch resp.Rcode {
			case mdns.RcodeSuccess:
				return txtRecords(resp), nil
			case mdns.RcodeNameError:
				return nil, nil
			default:
				lastErr = fmt.Errorf("server %s answered %s", server, mdns.RcodeToString[resp.Rcode])
			}
			// 服务器明确拒绝时不再重试同一服务器
			break
		}
	}
	return nil, lastErr
}

// exchange 发送查询，UDP 应答被截断时改用 TCP
func (c *Client) exchange(ctx context.Context, msg *mdns.Msg, server string) (*mdns.Msg, error) {
	resp, _, err := c.udp.ExchangeContext(ctx, msg, server)
	if err != nil {
		return nil, err
	}
	if resp.Truncated {
		resp, _, err = c.tcp.ExchangeContext(ctx, msg, server)
		if err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func txtRecords(resp *mdns.Msg) []string {
	var out []string
	for _, rr := range resp.Answer {
		if txt, ok := rr.(*mdns.TXT); ok {
			out = append(out, strings.Join(txt.Txt, ""))
		}
	}
	return out
}
