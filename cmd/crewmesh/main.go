// Command crewmesh runs the coordination service: it wires the message bus,
// the orchestrator and the full worker roster, then serves the query, status
// and telemetry streaming endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/crewmesh/crewmesh"
	"github.com/crewmesh/crewmesh/agent"
	"github.com/crewmesh/crewmesh/config"
	"github.com/crewmesh/crewmesh/core"
	"github.com/crewmesh/crewmesh/fanout"
	"github.com/crewmesh/crewmesh/logging"
	"github.com/crewmesh/crewmesh/model"
	"github.com/crewmesh/crewmesh/model/anthropic"
	"github.com/crewmesh/crewmesh/model/openai"
	"github.com/crewmesh/crewmesh/orchestrator"
	"github.com/crewmesh/crewmesh/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "crewmesh:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(cfg.Logger.Level),
		Format: cfg.Logger.Format,
		Output: os.Stdout,
	})
	logger.Info("starting crewmesh", "version", crewmesh.Version, "addr", cfg.Server.Addr)

	mesh := crewmesh.New(func(o *crewmesh.Options) {
		o.HistoryLimit = cfg.Bus.HistoryLimit
		o.CallTimeout = cfg.CallTimeout()
		o.RequestTimeout = cfg.RequestTimeout()
		o.Logger = logger
	})

	vitals := registerAgents(mesh, cfg, logger)

	manager := fanout.NewManager(logger.WithComponent("fanout"))
	publisher := fanout.NewSnapshotPublisher(manager, snapshotFunc(mesh.Orchestrator(), vitals), cfg.SnapshotInterval(), logger.WithComponent("fanout"))
	if err := publisher.Start(); err != nil {
		return err
	}
	defer publisher.Stop()

	srv := server.New(mesh.Orchestrator(), manager, cfg.Server.Addr, logger.WithComponent("server"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Start(ctx)
}

// registerAgents builds the full worker roster on the mesh and returns the
// vitals agent handle used by the telemetry snapshot loop.
func registerAgents(mesh *crewmesh.Mesh, cfg *config.Config, logger *logging.CrewLogger) *agent.VitalsAgent {
	common := func(o *agent.Options) {
		o.Bus = mesh.Bus()
		o.Logger = logger
	}

	vitals := agent.NewVitalsAgent(common)
	mesh.RegisterAgent(vitals)
	mesh.RegisterAgent(agent.NewAlertAgent(common))
	mesh.RegisterAgent(agent.NewMoodAgent(common))
	mesh.RegisterAgent(agent.NewSchedulerAgent(common))
	mesh.RegisterAgent(agent.NewTwinAgent(common))
	mesh.RegisterAgent(agent.NewSleepAgent(common))
	mesh.RegisterAgent(agent.NewExerciseAgent(common))
	mesh.RegisterAgent(agent.NewNutritionAgent(common))
	mesh.RegisterAgent(agent.NewSocialAgent(common))

	mesh.RegisterAgent(agent.NewCounselorAgent(func(o *agent.CounselorOptions) {
		common(&o.Options)
		o.Completer = newCompleter(cfg.Completion, logger)
	}))

	return vitals
}

// newCompleter builds the optional counselor completion backend. An empty or
// unknown provider means canned responses only.
func newCompleter(cc config.CompletionConfig, logger *logging.CrewLogger) model.Completer {
	switch cc.Provider {
	case "anthropic":
		return anthropic.New(func(o *anthropic.Options) {
			if cc.Model != "" {
				o.Model = anthropicsdk.Model(cc.Model)
			}
			o.APIKey = cc.APIKey
		})
	case "openai":
		return openai.New(func(o *openai.Options) {
			if cc.Model != "" {
				o.Model = cc.Model
			}
			o.APIKey = cc.APIKey
		})
	case "":
		return nil
	default:
		logger.Warn("unknown completion provider, counselor runs without a model", "provider", cc.Provider)
		return nil
	}
}

// snapshotFunc assembles the per-tick telemetry frame: a fresh vitals reading
// plus every registered agent's lifecycle state and latest activity line.
func snapshotFunc(orch *orchestrator.Orchestrator, vitals *agent.VitalsAgent) fanout.SnapshotFunc {
	return func(ctx context.Context) fanout.Snapshot {
		snap := fanout.Snapshot{
			AgentStates: make(map[string]fanout.AgentState),
			Timestamp:   core.Now(),
		}

		callCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if res, err := vitals.Process(callCtx, core.Payload{"action": "get_current"}); err == nil {
			if v, ok := res["vitals"].(core.Result); ok {
				snap.Vitals = v
			}
		}

		status := orch.GetSystemStatus()
		for _, st := range status.Agents {
			snap.AgentStates[st.Name] = fanout.AgentState{
				Status:     string(st.State),
				LastAction: st.StatusMessage,
			}
		}
		return snap
	}
}
