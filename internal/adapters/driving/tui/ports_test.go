package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atlus-labs/atlus/internal/adapters/driving/tui/tuitest"
)

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ports   Ports
		wantErr error
	}{
		{
			name:  "complete",
			ports: Ports{Graph: &tuitest.MockGraphService{}, Node: &tuitest.MockNodeService{}, OwnerID: "local"},
		},
		{
			name:    "missing graph service",
			ports:   Ports{Node: &tuitest.MockNodeService{}},
			wantErr: ErrMissingGraphService,
		},
		{
			name:    "missing node service",
			ports:   Ports{Graph: &tuitest.MockGraphService{}},
			wantErr: ErrMissingNodeService,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
