package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/wcpairing/core"
)

// Interface compliance (compile-time assertion)
var _ core.PairingStore = (*InMemoryStore)(nil)

func TestInMemoryStore_SaveGetIsolation(t *testing.T) {
	s := NewInMemoryStore()
	p := core.Pairing{Topic: "t1", State: core.PairingStateActive, Methods: []string{"m1"}, Metadata: &core.AppMetadata{Name: "wallet"}}
	require.NoError(t, s.Save(p))

	// mutate original
	p.Methods[0] = "changed"
	p.Metadata.Name = "changed"

	got, err := s.Get("t1")
	require.NoError(t, err)
	assert.Equal(t, "m1", got.Methods[0])
	assert.Equal(t, "wallet", got.Metadata.Name)

	// mutate returned copy
	got.Methods[0] = "x"
	again, _ := s.Get("t1")
	assert.Equal(t, "m1", again.Methods[0])
}

func TestInMemoryStore_ListAndDelete(t *testing.T) {
	s := NewInMemoryStore()
	require.NoError(t, s.Save(core.Pairing{Topic: "b"}))
	require.NoError(t, s.Save(core.Pairing{Topic: "a"}))

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Topic)
	assert.Equal(t, "b", list[1].Topic)

	require.NoError(t, s.Delete("a"))
	err = s.Delete("a")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(err, core.ErrUnknownTopic))

	_, err = s.Get("a")
	assert.ErrorIs(t, err, ErrNotFound)

	list, _ = s.List()
	assert.Len(t, list, 1)
}

func TestInMemoryStore_Concurrency(t *testing.T) {
	s := NewInMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := s.Save(core.Pairing{Topic: fmt.Sprintf("t%d", i%10)}); err != nil {
				t.Errorf("save err: %v", err)
			}
			_, _ = s.List()
		}(i)
	}
	wg.Wait()

	list, err := s.List()
	require.NoError(t, err)
	assert.Len(t, list, 10)
}
