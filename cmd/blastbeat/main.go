/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Command blastbeat is the gateway's process entrypoint: load the INI
// config, wire the orchestrator/router/pinger/acceptors, drop privileges,
// and block until a termination signal arrives.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/customwebapps/blastbeat/internal/acceptor"
	"github.com/customwebapps/blastbeat/internal/config"
	"github.com/customwebapps/blastbeat/internal/dealer"
	"github.com/customwebapps/blastbeat/internal/gateway"
	"github.com/customwebapps/blastbeat/internal/group"
	"github.com/customwebapps/blastbeat/internal/metrics"
	"github.com/customwebapps/blastbeat/internal/orchestrator"
	"github.com/customwebapps/blastbeat/internal/pinger"
	"github.com/customwebapps/blastbeat/internal/privilege"
	"github.com/customwebapps/blastbeat/internal/router"
	"github.com/customwebapps/blastbeat/internal/session"
	"github.com/customwebapps/blastbeat/internal/sht"
	"github.com/customwebapps/blastbeat/internal/vhost"
	"github.com/customwebapps/blastbeat/log"
)

var logMain = log.New("main")

func main() {
	root := &cobra.Command{
		Use:          "blastbeat <config-path>",
		Short:        "uWSGI-style stateful request gateway",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0])
		},
	}

	if err := root.Execute(); err != nil {
		logMain.Errorf("fatal: %v", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	domainCtx, err := buildDomainContext(cfg)
	if err != nil {
		return err
	}

	orch := orchestrator.New(domainCtx, 256)

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go orch.Run(appCtx)

	groups := group.New()

	var m *metrics.Metrics
	if cfg.MetricsBind != "" {
		m = metrics.New(prometheus.DefaultRegisterer)
		go serveMetrics(cfg.MetricsBind, m)
	}

	bridge := router.New()
	gw := gateway.New(orch, bridge, groups, m)

	if err := bridge.Start(cfg.Bus, dealerTouch(domainCtx), gw.Dispatch(domainCtx)); err != nil {
		return fmt.Errorf("start router bridge: %w", err)
	}
	defer bridge.Stop()

	p := pinger.New(time.Duration(cfg.PingFreq)*time.Second, domainCtx.Dealers.List, bridge.EmitPing)
	go p.Run(appCtx)

	if err := startAcceptors(appCtx, domainCtx, gw, cfg); err != nil {
		return err
	}

	if cfg.UID != 0 || cfg.GID != 0 {
		if err := privilege.Drop(cfg.UID, cfg.GID); err != nil {
			return fmt.Errorf("drop privileges: %w", err)
		}
	}

	waitForSignal()
	logMain.Infof("shutting down")

	for _, a := range domainCtx.Acceptors {
		_ = a.Shutdown(context.Background())
	}
	return nil
}

// buildDomainContext turns the loaded config into the orchestrator's
// domain state: one Dealer per distinct identity named by any vhost, one
// VirtualHost per config section with its dealer list resolved against the
// pool, and the §4.6 acceptor/vhost binding fixup (named acceptors win,
// otherwise every "shared" acceptor picks up the vhost).
func buildDomainContext(cfg *config.Config) (*orchestrator.Context, error) {
	pool := dealer.NewPool()

	var vhosts []*vhost.VirtualHost
	for _, vc := range cfg.VHosts {
		v := &vhost.VirtualHost{
			Name:           vc.Name,
			AcceptorNames:  vc.Acceptors,
			SSLCertificate: vc.SSLCertificate,
			SSLKey:         vc.SSLKey,
		}
		for _, id := range vc.Dealers {
			d, ok := pool.Get(id)
			if !ok {
				var addErr error
				d, addErr = pool.Add(id)
				if addErr != nil {
					return nil, fmt.Errorf("register dealer %q: %w", id, addErr)
				}
			}
			v.Dealers = append(v.Dealers, d)
		}
		vhosts = append(vhosts, v)
	}

	var acceptors []*acceptor.Acceptor
	for _, ac := range cfg.Acceptors {
		a := acceptor.New(ac.Name, ac.Bind, ac.Shared)
		a.SSLCertificate = ac.SSLCertificate
		a.SSLKey = ac.SSLKey
		acceptors = append(acceptors, a)
	}

	acceptor.Fix(acceptors, vhosts)

	return &orchestrator.Context{
		Sessions:  sht.New[*session.Session](cfg.SHTSize),
		Dealers:   pool,
		VHosts:    vhosts,
		Acceptors: acceptors,
	}, nil
}

func dealerTouch(ctx *orchestrator.Context) func(identity string) {
	return func(identity string) {
		if d, ok := ctx.Dealers.Get(identity); ok {
			d.Touch()
			d.Revive()
		}
	}
}

func startAcceptors(appCtx context.Context, ctx *orchestrator.Context, gw *gateway.Gateway, cfg *config.Config) error {
	for _, a := range ctx.Acceptors {
		cert, key := cfg.SSLCertificate, cfg.SSLKey
		if a.SSLCertificate != "" {
			cert = a.SSLCertificate
		}
		if a.SSLKey != "" {
			key = a.SSLKey
		}

		if cert == "" || key == "" {
			if err := a.Listen(appCtx, gw, nil); err != nil {
				return fmt.Errorf("listen on acceptor %s: %w", a.Name, err)
			}
			continue
		}

		tlsCfg, err := a.TLSConfig(cfg.SSLCertificate, cfg.SSLKey)
		if err != nil {
			return fmt.Errorf("tls config for acceptor %s: %w", a.Name, err)
		}
		if err := a.Listen(appCtx, gw, tlsCfg); err != nil {
			return fmt.Errorf("listen on acceptor %s: %w", a.Name, err)
		}
	}
	return nil
}

func serveMetrics(bind string, m *metrics.Metrics) {
	_ = m
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: bind, Handler: mux}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logMain.Errorf("metrics server: %v", err)
	}
}

func waitForSignal() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-sig
}
