package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewVisaTools(t *testing.T) {
	vt := NewVisaTools(&fakeAPI{})
	assert.NotNil(t, vt)
	assert.NotNil(t, vt.client)
}

func TestGetTools(t *testing.T) {
	vt := NewVisaTools(&fakeAPI{})
	tools := vt.GetTools()

	// Count expected tools
	expectedToolCount := 3 + 4 + 6 // core + vsm + vsps
	assert.Len(t, tools, expectedToolCount)

	toolNames := make(map[string]bool)
	for _, tool := range tools {
		toolNames[tool.Name] = true
	}

	// Core tools
	assert.True(t, toolNames["hello_world"])
	assert.True(t, toolNames["get_exchange_rate"])
	assert.True(t, toolNames["find_nearby_atms"])

	// Subscription Manager tools
	assert.True(t, toolNames["vsm_search"])
	assert.True(t, toolNames["vsm_merchant_details"])
	assert.True(t, toolNames["vsm_add_merchant"])
	assert.True(t, toolNames["vsm_cancel"])

	// Stop Payment Service tools
	assert.True(t, toolNames["vsps_search_instructions"])
	assert.True(t, toolNames["vsps_search_eligible"])
	assert.True(t, toolNames["vsps_add_stop"])
	assert.True(t, toolNames["vsps_cancel_stop"])
	assert.True(t, toolNames["vsps_update_stop"])
	assert.True(t, toolNames["vsps_extend_stop"])
}

func TestEveryToolHasAHandler(t *testing.T) {
	vt := NewVisaTools(&fakeAPI{})
	handlers := vt.Handlers()

	for _, tool := range vt.GetTools() {
		assert.Contains(t, handlers, tool.Name, "tool %s has no handler", tool.Name)
	}
	assert.Len(t, handlers, len(vt.GetTools()))
}
