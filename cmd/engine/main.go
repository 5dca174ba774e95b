package main

import (
	"context"
	"flag"
	"log"

	"main/internal/broker"
	"main/internal/broker/dhan"
	"main/internal/engine"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/store"
	"main/pkg/conn"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (json or yaml)")
	autostart := flag.Bool("autostart", true, "Arm the scheduler immediately")
	flag.Parse()

	loaded, err := ops.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if loaded.Profiler.ServerAddress != "" {
		name := loaded.Profiler.ApplicationName
		if name == "" {
			name = "algo/engine"
		}
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: name,
			ServerAddress:   loaded.Profiler.ServerAddress,
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			log.Fatalf("pyroscope start failed: %v", err)
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	client, err := conn.New(loaded.Database)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer func() {
		_ = client.Close()
	}()

	st := store.New(client)
	if err := st.Migrate(); err != nil {
		log.Fatalf("database migrate failed: %v", err)
	}

	ctx := context.Background()
	settings, err := st.GlobalSettings(ctx)
	if err != nil {
		log.Fatalf("load global settings failed: %v", err)
	}

	dhanClient := dhan.New(loaded.Broker)
	if !settings.PaperTrading && !dhanClient.Configured() {
		log.Fatalf("live trading enabled but dhan credentials are not configured")
	}

	metrics := obs.NewMetrics()
	cycle := engine.NewCycle(engine.CycleConfig{
		Store:    st,
		Data:     dhanClient,
		Paper:    broker.NewPaperDispatcher(),
		Live:     dhanClient,
		Calendar: loaded.Calendar,
		Metrics:  metrics,
	})
	scheduler := engine.NewScheduler(cycle, metrics, loaded.Interval, loaded.Offset)
	eng := engine.NewEngine(st, scheduler, cycle)

	if *autostart {
		eng.StartScheduler()
	}
	logs.Infof("engine up: paper=%v scheduler=%v", settings.PaperTrading, eng.SchedulerStatus())

	<-sys.Shutdown()
	eng.StopScheduler()

	snapshot := metrics.Snapshot()
	logs.Infof("metrics: cycles=%d skipped=%d symbols=%d intents=%d rejections=%d orders=%d dispatch_failures=%d ticks_dropped=%d cycle_latency=%+v",
		snapshot.Cycles, snapshot.CyclesSkipped, snapshot.SymbolsEvaluated, snapshot.Intents,
		snapshot.RiskRejections, snapshot.OrdersPlaced, snapshot.DispatchFailures, snapshot.TicksDropped,
		snapshot.CycleLatency)
}
