package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewManagerSelectsStrategyByEnvironment(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		strategy    string
	}{
		{name: "development auto-migrates", environment: "development", strategy: "gorm_auto_migrate"},
		{name: "test runs scripts", environment: "test", strategy: "golang_migrate"},
		{name: "production runs scripts", environment: "production", strategy: "golang_migrate"},
		{name: "case insensitive", environment: "Production", strategy: "golang_migrate"},
		{name: "unknown falls back to auto-migrate", environment: "staging", strategy: "gorm_auto_migrate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager := NewManager(tt.environment)
			assert.Equal(t, tt.strategy, manager.GetStrategy().GetName())
		})
	}
}

func TestNewManagerWithStrategyKeepsGivenStrategy(t *testing.T) {
	manager := NewManagerWithStrategy(NewGormAutoMigrateStrategy())
	assert.Equal(t, "gorm_auto_migrate", manager.GetStrategy().GetName())
}
