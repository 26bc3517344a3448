package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/celestix/gotgproto"
	"github.com/stretchr/testify/assert"

	"github.com/blockedby/episode-relay/internal/config"
)

func TestManager_Init_FactoryError(t *testing.T) {
	// Arrange
	m := NewManager(&config.Config{TGApiID: 12345, TGApiHash: "test_hash", TGBotToken: "1:abc"})

	m.SetClientFactory(func(ctx context.Context, cfg *config.Config) (*gotgproto.Client, error) {
		return nil, errors.New("ACCESS_TOKEN_INVALID")
	})

	// Act
	err := m.Init(context.Background())

	// Assert
	assert.Error(t, err, "a bot that cannot log in cannot do anything")
	assert.Equal(t, StatusError, m.GetStatus())
	assert.ErrorContains(t, m.LastError(), "ACCESS_TOKEN_INVALID")
	assert.Nil(t, m.GetClient())
}

func TestManager_Init_Ready(t *testing.T) {
	m := NewManager(&config.Config{})
	var gotCfg *config.Config
	m.SetClientFactory(func(ctx context.Context, cfg *config.Config) (*gotgproto.Client, error) {
		gotCfg = cfg
		return nil, nil
	})

	assert.Equal(t, StatusInitializing, m.GetStatus())
	assert.NoError(t, m.Init(context.Background()))
	assert.Equal(t, StatusReady, m.GetStatus())
	assert.NoError(t, m.LastError())
	assert.NotNil(t, gotCfg)
}

func TestManager_GetStatus_Concurrent(t *testing.T) {
	m := NewManager(&config.Config{})

	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			m.GetStatus()
		}()
	}

	close(start)
	wg.Wait()
}

func TestManager_Stop_Graceful(t *testing.T) {
	m := NewManager(&config.Config{})

	// Should not panic
	assert.NotPanics(t, func() {
		m.Stop()
	})
}
