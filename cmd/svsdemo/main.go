// Command svsdemo wires transport/wsloop, package logic, and the
// core config/roster loaders into a small runnable node, standing in
// for the out-of-scope NDN deployment per spec §6. It is a reference
// harness for integration testing and manual experimentation, not a
// production sync client.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nishsab/ndn-svs/core"
	"github.com/nishsab/ndn-svs/digestcache"
	"github.com/nishsab/ndn-svs/logic"
	"github.com/nishsab/ndn-svs/merge"
	"github.com/nishsab/ndn-svs/security"
	"github.com/nishsab/ndn-svs/session"
	"github.com/nishsab/ndn-svs/transport"
	"github.com/nishsab/ndn-svs/transport/wsloop"
	"github.com/nishsab/ndn-svs/vv"
)

func main() {
	core.InitializeLogger()
	core.StartTimestamp = time.Now()
	core.LogInfo("svsdemo", fmt.Sprintf("starting version=%s built=%s at %s", core.Version, core.BuildTime, core.StartTimestamp.Format(time.RFC3339)))

	if len(os.Args) < 4 {
		core.LogFatal("svsdemo", "usage: svsdemo <ws-url> <local-node-id> <sync-prefix> [config.toml] [roster.yml]")
		return
	}
	wsURL := os.Args[1]
	localID := os.Args[2]
	syncPrefixArg := os.Args[3]

	if len(os.Args) >= 5 {
		if err := core.LoadConfig(os.Args[4]); err != nil {
			core.LogWarn("svsdemo", "failed to load config, using defaults: "+err.Error())
		} else {
			core.InitializeLogger()
		}
	}

	var roster *core.Roster
	if len(os.Args) >= 6 {
		r, err := core.LoadRoster(os.Args[5])
		if err != nil {
			core.LogFatal("svsdemo", "failed to load roster: "+err.Error())
			return
		}
		roster = r
	} else {
		roster = &core.Roster{}
	}

	node, err := wsloop.Dial(wsURL)
	if err != nil {
		core.LogFatal("svsdemo", "failed to dial hub: "+err.Error())
		return
	}

	liveness := session.NewLiveness()
	peers := make([]vv.NodeID, 0, len(roster.Peers))
	for _, p := range roster.Peers {
		peers = append(peers, vv.NodeID(p))
	}
	liveness.Seed(peers)

	syncPrefix := transport.NameFromString(syncPrefixArg)

	sec := security.Options{Mode: security.ModeNone}
	if key := core.GetConfigStringDefault("security.hmac_key", ""); key != "" {
		sec = security.Options{Mode: security.ModeHMAC, HMACKey: []byte(key)}
	}

	onUpdate := func(missing []merge.Missing) {
		for _, m := range missing {
			core.LogInfo("svsdemo", fmt.Sprintf("missing data: %s [%d, %d]", m.NodeID, m.Low, m.High))
		}
	}

	l, err := logic.New(node, syncPrefix, vv.NodeID(localID), onUpdate, sec,
		logic.WithMaxWireSize(core.GetConfigIntDefault("wire.max_size", 500)),
		logic.WithEntryOverhead(core.GetConfigIntDefault("wire.entry_overhead", 16)),
		logic.WithRetxPeriod(core.GetConfigDurationDefault("timers.retx_ms", 30*time.Second)),
		logic.WithSuppressionPeriod(core.GetConfigDurationDefault("timers.suppression_ms", 200*time.Millisecond)),
		logic.WithDigestCache(digestcache.New()),
		logic.WithLiveness(liveness),
	)
	if err != nil {
		core.LogFatal("svsdemo", "failed to start sync logic: "+err.Error())
		return
	}

	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, os.Interrupt, syscall.SIGTERM)

	quitchan := make(chan error, 1)
	go func() { quitchan <- node.ProcessEvents() }()

	seq := vv.SeqNo(0)
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-sigchan:
			core.LogInfo("svsdemo", "shutting down: "+l.StateString())
			l.Close()
			node.Shutdown()
			return
		case err := <-quitchan:
			if err != nil {
				core.LogError("svsdemo", "transport loop exited: "+err.Error())
			}
			l.Close()
			return
		case <-ticker.C:
			seq++
			l.UpdateSeqNo(seq)
			core.LogInfo("svsdemo", "published seq "+fmt.Sprint(seq)+": "+l.StateString())
		}
	}
}
