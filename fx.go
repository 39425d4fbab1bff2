package splash

import (
	"context"

	"go.uber.org/fx"

	"github.com/splash-p2p/go-splash/config"
	"github.com/splash-p2p/go-splash/internal/core/metrics"
	"github.com/splash-p2p/go-splash/pkg/interfaces"
)

// ModuleInput 模块输入依赖
type ModuleInput struct {
	fx.In

	LC     fx.Lifecycle
	Config *config.Config

	// 可选依赖，主要用于测试替换
	Network  interfaces.Network     `optional:"true"`
	Resolver interfaces.TXTResolver `optional:"true"`
}

// ModuleOutput 模块输出
type ModuleOutput struct {
	fx.Out

	Node     *Node
	Counters *metrics.Counters
}

// ProvideNode 从配置构建节点，应用停止时关闭
func ProvideNode(input ModuleInput) (ModuleOutput, error) {
	b, err := FromConfig(input.Config)
	if err != nil {
		return ModuleOutput{}, err
	}
	if input.Network != nil {
		b.WithNetwork(input.Network)
	}
	if input.Resolver != nil {
		b.WithDNSResolver(input.Resolver)
	}
	m := metrics.New()
	b.WithMetrics(m)

	node, err := b.Build(context.Background())
	if err != nil {
		return ModuleOutput{}, err
	}

	input.LC.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return node.Close()
		},
	})
	return ModuleOutput{Node: node, Counters: m}, nil
}

// Module 返回 Fx 模块
//
// 需要应用中提供 *config.Config。
func Module() fx.Option {
	return fx.Module("splash",
		fx.Provide(ProvideNode),
	)
}
