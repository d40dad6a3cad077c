package bootstrap

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/taoyao-code/mcp-status/internal/app"
	cfgpkg "github.com/taoyao-code/mcp-status/internal/config"
	"github.com/taoyao-code/mcp-status/internal/render"
	"github.com/taoyao-code/mcp-status/internal/statusstore"
)

// Watch 轮询配置的端点并把每个快照渲染到 out，同时写入快照存储，直到 ctx 取消
func Watch(ctx context.Context, cfg *cfgpkg.Config, out io.Writer, format render.Format, noColor bool, log *zap.Logger) error {
	endpoint, err := app.PollEndpoint(cfg.Poller)
	if err != nil {
		return err
	}

	redisClient, err := app.NewRedisClient(cfg.Redis, log)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	store, err := app.NewStatusStore(cfg.Status, redisClient, log)
	if err != nil {
		return err
	}

	instanceID := app.GenerateInstanceID(cfg.App.InstanceID)
	poller := app.NewPoller(cfg.Poller, instanceID, nil, log)

	r := render.New(out, format, endpoint, noColor)
	if format == render.FormatText {
		_ = r.Render(poller.Latest())
	}

	onUpdate := statusstore.Fanout(r.Update, statusstore.Sink(ctx, store, log))
	if err := poller.Start(ctx, endpoint, cfg.Poller.Interval, onUpdate); err != nil {
		return err
	}
	<-ctx.Done()
	poller.Stop()
	return nil
}
