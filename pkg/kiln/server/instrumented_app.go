package server

import (
	"go.uber.org/zap"

	kilnapp "github.com/kilnhttp/kiln/pkg/kiln/app"
	"github.com/kilnhttp/kiln/pkg/kiln/metrics"
	"github.com/kilnhttp/kiln/pkg/kiln/wire"
)

// instrumentedApp wraps the embedder's App with metrics and structured
// logging, built once at server init rather than per request — every
// connection and worker shares this single decorator instance.
type instrumentedApp struct {
	inner   kilnapp.App
	metrics *metrics.Collectors
	logger  *zap.Logger
}

func instrument(inner kilnapp.App, m *metrics.Collectors, logger *zap.Logger) kilnapp.App {
	return &instrumentedApp{inner: inner, metrics: m, logger: logger}
}

func (a *instrumentedApp) OnStart(addresses []string) {
	a.logger.Info("server starting", zap.Strings("addresses", addresses))
	a.inner.OnStart(addresses)
}

func (a *instrumentedApp) OnConnect(peerAddr string) (any, bool) {
	state, ok := a.inner.OnConnect(peerAddr)
	if ok {
		a.metrics.ConnectionOpened()
	}
	return state, ok
}

func (a *instrumentedApp) HandleRequest(state any, req *wire.Request) *wire.Response {
	a.metrics.RequestHandled(req.Method())
	return a.inner.HandleRequest(state, req)
}

func (a *instrumentedApp) OnDisconnect(state any) {
	a.metrics.ConnectionClosed()
	a.inner.OnDisconnect(state)
}

func (a *instrumentedApp) OnAcceptError(err error) {
	a.metrics.AcceptError()
	a.logger.Warn("accept error", zap.Error(err))
	a.inner.OnAcceptError(err)
}

func (a *instrumentedApp) OnReadError(state any, err error) *wire.Response {
	a.metrics.ParseError()
	a.logger.Debug("read error", zap.Error(err))
	return a.inner.OnReadError(state, err)
}

func (a *instrumentedApp) OnSendError(state any, err error) {
	a.metrics.SendError()
	a.logger.Debug("send error", zap.Error(err))
	a.inner.OnSendError(state, err)
}
