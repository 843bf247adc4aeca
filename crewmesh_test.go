package crewmesh

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewmesh/crewmesh/agent"
)

func TestMeshQuery(t *testing.T) {
	mesh := New(func(o *Options) {
		o.HistoryLimit = 100
		o.CallTimeout = time.Second
	})

	common := func(ao *agent.Options) { ao.Bus = mesh.Bus() }
	mesh.RegisterAgent(agent.NewVitalsAgent(common))
	mesh.RegisterAgent(agent.NewAlertAgent(common))

	res, err := mesh.Query(context.Background(), "How is my heart rate?", "crew1")
	require.NoError(t, err)
	assert.Contains(t, res.Response, "Vitals Monitor here")
	assert.Len(t, res.ReasoningChain, 2)
}

func TestMeshDefaults(t *testing.T) {
	mesh := New()
	require.NotNil(t, mesh.Bus())
	require.NotNil(t, mesh.Orchestrator())

	// a query against an empty registry still yields an answer
	res, err := mesh.Query(context.Background(), "anything", "crew1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Response)
}
