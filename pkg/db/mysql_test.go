package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin-design-enrich/config"
)

func TestInitTiDBRemembersFailure(t *testing.T) {
	cfg := config.NewDefaultGlobalConfig()
	// nothing listens on port 1
	cfg.MySQLConfig.Port = 1

	first := InitTiDB(cfg)
	require.Error(t, first)

	second := InitTiDB(cfg)
	require.Error(t, second)
	assert.Equal(t, first.Error(), second.Error())
	assert.Nil(t, GetDB(context.Background()))
}

func TestInitTiDBWithoutConfig(t *testing.T) {
	err := InitTiDB(&config.GlobalConfig{})
	assert.Error(t, err)
}
