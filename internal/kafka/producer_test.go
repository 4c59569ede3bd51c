package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestPublish_FullInboxDrops(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	// no Start: nothing drains the inbox
	p := NewProducer([]string{"127.0.0.1:1"}, "pedidos.creados", 1, zap.New(core))

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Publish([]byte("1"), []byte(`{}`))
		p.Publish([]byte("2"), []byte(`{}`))
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full inbox")
	}

	require.Len(t, p.inbox, 1)
	m := <-p.inbox
	assert.Equal(t, []byte("1"), m.Key)

	entries := logs.FilterMessage("kafka inbox full, message dropped").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "2", entries[0].ContextMap()["key"])
	assert.Equal(t, "pedidos.creados", entries[0].ContextMap()["topic"])
}
