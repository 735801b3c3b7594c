package cluster

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveNode_MatchesConfiguredHostname(t *testing.T) {
	eng := newFakeEngine()
	eng.addRunning("id-a", "node1")
	eng.addRunning("id-b", "node2")
	eng.addRunning("id-c", "node3")

	node, err := ResolveNode(context.Background(), eng, "node2")
	require.NoError(t, err)
	assert.Equal(t, "id-b", node.ContainerID)
	assert.Equal(t, "node2", node.Hostname)
}

func TestResolveNode_MissIsHardError(t *testing.T) {
	eng := newFakeEngine()
	eng.addRunning("id-a", "node1")
	eng.addRunning("id-b", "node2")
	eng.addRunning("id-c", "node3")

	node, err := ResolveNode(context.Background(), eng, "z")
	assert.Nil(t, node)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestResolveNode_EmptyCandidateSet(t *testing.T) {
	eng := newFakeEngine()

	_, err := ResolveNode(context.Background(), eng, "node1")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestResolveNode_SkipsUninspectableContainers(t *testing.T) {
	eng := newFakeEngine()
	eng.addRunning("id-a", "node1")
	eng.addRunning("id-b", "node2")
	eng.inspectErr["id-a"] = errors.New("container vanished")

	node, err := ResolveNode(context.Background(), eng, "node2")
	require.NoError(t, err)
	assert.Equal(t, "id-b", node.ContainerID)
}

func TestResolveNode_ListFailure(t *testing.T) {
	eng := newFakeEngine()
	eng.listErr = errors.New("engine unavailable")

	_, err := ResolveNode(context.Background(), eng, "node1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNodeNotFound)
}

func TestListNodes(t *testing.T) {
	eng := newFakeEngine()
	eng.addRunning("id-a", "node1")
	eng.addRunning("id-b", "node2")

	nodes, err := ListNodes(context.Background(), eng)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "node1", nodes[0].Hostname)
	assert.Equal(t, "node2", nodes[1].Hostname)
}
