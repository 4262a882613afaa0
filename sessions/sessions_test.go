package sessions

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetCreatesOncePerKey(t *testing.T) {
	s := NewStore()

	a := s.Get("vendas", "5511999990000")
	b := s.Get("vendas", "5511999990000")
	assert.Same(t, a, b)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "vendas", a.Channel)
	assert.False(t, a.CreatedAt.IsZero())

	// canal diferente, sessão diferente
	c := s.Get("suporte", "5511999990000")
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, s.Len())
}

func TestGetConcurrentSameKey(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	got := make([]*Session, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = s.Get("vendas", "peer-unico")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, s.Len())
	for i := 1; i < 50; i++ {
		assert.Same(t, got[0], got[i])
	}
}

func TestSessionStateIsPerKey(t *testing.T) {
	s := NewStore()

	a := s.Get("vendas", "a")
	b := s.Get("vendas", "b")

	a.Lock()
	a.Draft.Name = "Ana"
	a.Score = 75
	lead := int64(10)
	a.LeadID = &lead
	a.Unlock()

	b.Lock()
	defer b.Unlock()
	assert.Empty(t, b.Draft.Name)
	assert.Zero(t, b.Score)
	assert.Nil(t, b.LeadID)
}
