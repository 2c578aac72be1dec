package tools

import (
	"context"
	"encoding/json"
	"testing"

	"visamcp/internal/visa"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI implements visa.API with canned responses, recording what it
// received.
type fakeAPI struct {
	response json.RawMessage
	err      error

	lastOp             string
	lastPAN            string
	lastDays           int
	lastExchangeReq    visa.ExchangeRateRequest
	lastATMReq         visa.ATMSearchRequest
	lastAddStopReq     visa.AddStopInstructionRequest
	lastAddMerchantReq visa.AddStopMerchantRequest
	lastUpdateReq      visa.UpdateStopInstructionRequest
	lastStopID         string
	lastEndDate        string
}

func (f *fakeAPI) result() (json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.response == nil {
		return json.RawMessage(`{}`), nil
	}
	return f.response, nil
}

func (f *fakeAPI) HelloWorld(ctx context.Context) (json.RawMessage, error) {
	f.lastOp = "HelloWorld"
	return f.result()
}

func (f *fakeAPI) ExchangeRate(ctx context.Context, req visa.ExchangeRateRequest) (json.RawMessage, error) {
	f.lastOp = "ExchangeRate"
	f.lastExchangeReq = req
	return f.result()
}

func (f *fakeAPI) ATMSearch(ctx context.Context, req visa.ATMSearchRequest) (json.RawMessage, error) {
	f.lastOp = "ATMSearch"
	f.lastATMReq = req
	return f.result()
}

func (f *fakeAPI) SubscriptionSearch(ctx context.Context, pan string) (json.RawMessage, error) {
	f.lastOp = "SubscriptionSearch"
	f.lastPAN = pan
	return f.result()
}

func (f *fakeAPI) MerchantDetails(ctx context.Context, transactionID string) (json.RawMessage, error) {
	f.lastOp = "MerchantDetails"
	return f.result()
}

func (f *fakeAPI) AddStopMerchant(ctx context.Context, req visa.AddStopMerchantRequest) (json.RawMessage, error) {
	f.lastOp = "AddStopMerchant"
	f.lastAddMerchantReq = req
	return f.result()
}

func (f *fakeAPI) CancelSubscriptionStop(ctx context.Context, stopID string) (json.RawMessage, error) {
	f.lastOp = "CancelSubscriptionStop"
	f.lastStopID = stopID
	return f.result()
}

func (f *fakeAPI) StopInstructionSearch(ctx context.Context, pan string) (json.RawMessage, error) {
	f.lastOp = "StopInstructionSearch"
	f.lastPAN = pan
	return f.result()
}

func (f *fakeAPI) EligibleTransactionSearch(ctx context.Context, pan string, days int) (json.RawMessage, error) {
	f.lastOp = "EligibleTransactionSearch"
	f.lastPAN = pan
	f.lastDays = days
	return f.result()
}

func (f *fakeAPI) AddStopInstruction(ctx context.Context, req visa.AddStopInstructionRequest) (json.RawMessage, error) {
	f.lastOp = "AddStopInstruction"
	f.lastAddStopReq = req
	return f.result()
}

func (f *fakeAPI) CancelStopInstruction(ctx context.Context, stopID string) (json.RawMessage, error) {
	f.lastOp = "CancelStopInstruction"
	f.lastStopID = stopID
	return f.result()
}

func (f *fakeAPI) UpdateStopInstruction(ctx context.Context, req visa.UpdateStopInstructionRequest) (json.RawMessage, error) {
	f.lastOp = "UpdateStopInstruction"
	f.lastUpdateReq = req
	return f.result()
}

func (f *fakeAPI) ExtendStopInstruction(ctx context.Context, stopID, newEndDate string) (json.RawMessage, error) {
	f.lastOp = "ExtendStopInstruction"
	f.lastStopID = stopID
	f.lastEndDate = newEndDate
	return f.result()
}

var _ visa.API = (*fakeAPI)(nil)

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	content, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent")
	return content.Text
}

func TestHandleHelloWorld(t *testing.T) {
	fake := &fakeAPI{response: json.RawMessage(`{"message":"helloworld","timestamp":"2024-01-01T00:00:00"}`)}
	vt := NewVisaTools(fake)

	result, err := vt.HandleHelloWorld(context.Background(), callRequest("hello_world", nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "HelloWorld", fake.lastOp)
	assert.Contains(t, textOf(t, result), "helloworld")
}

func TestHandleGetExchangeRate(t *testing.T) {
	fake := &fakeAPI{response: json.RawMessage(`{"conversionRate":"0.93","destinationAmount":"93.00"}`)}
	vt := NewVisaTools(fake)

	result, err := vt.HandleGetExchangeRate(context.Background(), callRequest("get_exchange_rate", map[string]interface{}{
		"source_currency":      "USD",
		"destination_currency": "EUR",
		"amount":               100.0,
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	assert.Equal(t, "USD", fake.lastExchangeReq.SourceCurrency)
	assert.Equal(t, "EUR", fake.lastExchangeReq.DestinationCurrency)
	assert.Equal(t, 100.0, fake.lastExchangeReq.Amount)

	// Upstream values pass through unmodified
	text := textOf(t, result)
	assert.Contains(t, text, "0.93")
	assert.Contains(t, text, "93.00")
}

func TestHandleGetExchangeRate_MissingArgs(t *testing.T) {
	vt := NewVisaTools(&fakeAPI{})

	result, err := vt.HandleGetExchangeRate(context.Background(), callRequest("get_exchange_rate", map[string]interface{}{
		"source_currency": "USD",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleFindNearbyATMs(t *testing.T) {
	fake := &fakeAPI{response: json.RawMessage(`{"responseData":[{"foundATMLocations":[{"name":"ATM 1"},{"name":"ATM 2"}]}]}`)}
	vt := NewVisaTools(fake)

	result, err := vt.HandleFindNearbyATMs(context.Background(), callRequest("find_nearby_atms", map[string]interface{}{
		"latitude":      37.7749,
		"longitude":     -122.4194,
		"distance":      10.0,
		"distance_unit": "mi",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	assert.Equal(t, 10, fake.lastATMReq.Distance)
	assert.Equal(t, "mi", fake.lastATMReq.DistanceUnit)
	assert.Contains(t, textOf(t, result), "ATM 1")
}

func TestHandleFindNearbyATMs_NoResults(t *testing.T) {
	fake := &fakeAPI{response: json.RawMessage(`{"responseData":[{"foundATMLocations":[]}]}`)}
	vt := NewVisaTools(fake)

	result, err := vt.HandleFindNearbyATMs(context.Background(), callRequest("find_nearby_atms", map[string]interface{}{
		"latitude":  37.7749,
		"longitude": -122.4194,
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, textOf(t, result), "No ATMs found")
}

func TestHandleFindNearbyATMs_MissingCoordinates(t *testing.T) {
	vt := NewVisaTools(&fakeAPI{})

	result, err := vt.HandleFindNearbyATMs(context.Background(), callRequest("find_nearby_atms", map[string]interface{}{
		"latitude": 37.7749,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleVSMSearch(t *testing.T) {
	fake := &fakeAPI{}
	vt := NewVisaTools(fake)

	result, err := vt.HandleVSMSearch(context.Background(), callRequest("vsm_search", map[string]interface{}{
		"pan": "4111111111111111",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "SubscriptionSearch", fake.lastOp)
	assert.Equal(t, "4111111111111111", fake.lastPAN)
}

func TestHandleVSMAddMerchant_OptionalReason(t *testing.T) {
	fake := &fakeAPI{}
	vt := NewVisaTools(fake)

	result, err := vt.HandleVSMAddMerchant(context.Background(), callRequest("vsm_add_merchant", map[string]interface{}{
		"pan":         "4111111111111111",
		"merchant_id": "merchant-1",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Empty(t, fake.lastAddMerchantReq.Reason)
}

func TestHandleVSPSSearchEligible_DefaultsAndBounds(t *testing.T) {
	fake := &fakeAPI{}
	vt := NewVisaTools(fake)

	// Default window
	result, err := vt.HandleVSPSSearchEligible(context.Background(), callRequest("vsps_search_eligible", map[string]interface{}{
		"pan": "4111111111111111",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, 90, fake.lastDays)

	// In-range window
	result, err = vt.HandleVSPSSearchEligible(context.Background(), callRequest("vsps_search_eligible", map[string]interface{}{
		"pan":  "4111111111111111",
		"days": 180.0,
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, 180, fake.lastDays)

	// Out-of-range window is rejected before any client call
	fake.lastOp = ""
	result, err = vt.HandleVSPSSearchEligible(context.Background(), callRequest("vsps_search_eligible", map[string]interface{}{
		"pan":  "4111111111111111",
		"days": 10.0,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Empty(t, fake.lastOp)
}

func TestHandleVSPSAddStop(t *testing.T) {
	fake := &fakeAPI{}
	vt := NewVisaTools(fake)

	result, err := vt.HandleVSPSAddStop(context.Background(), callRequest("vsps_add_stop", map[string]interface{}{
		"pan":   "4111111111111111",
		"level": "mcc",
		"mcc":   "5968",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, visa.LevelMCC, fake.lastAddStopReq.Level)
	assert.Equal(t, "5968", fake.lastAddStopReq.MCC)
}

func TestHandleVSPSAddStop_InvalidLevel(t *testing.T) {
	fake := &fakeAPI{}
	vt := NewVisaTools(fake)

	result, err := vt.HandleVSPSAddStop(context.Background(), callRequest("vsps_add_stop", map[string]interface{}{
		"pan":   "4111111111111111",
		"level": "country",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Empty(t, fake.lastOp)
}

func TestHandleVSPSExtendStop(t *testing.T) {
	fake := &fakeAPI{}
	vt := NewVisaTools(fake)

	result, err := vt.HandleVSPSExtendStop(context.Background(), callRequest("vsps_extend_stop", map[string]interface{}{
		"stop_id":      "stop-1",
		"new_end_date": "2026-12-31",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "stop-1", fake.lastStopID)
	assert.Equal(t, "2026-12-31", fake.lastEndDate)
}

func TestClientErrorsBecomeErrorEnvelopes(t *testing.T) {
	fake := &fakeAPI{err: &visa.APIError{StatusCode: 400, Message: "Invalid account number"}}
	vt := NewVisaTools(fake)

	result, err := vt.HandleVSMSearch(context.Background(), callRequest("vsm_search", map[string]interface{}{
		"pan": "4111111111111111",
	}))
	require.NoError(t, err, "domain failures never surface as Go errors")
	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "Invalid account number")
}

func TestConfigErrorsBecomeErrorEnvelopes(t *testing.T) {
	fake := &fakeAPI{err: &visa.ConfigError{Reason: "client certificate not found at /certs/cert.pem"}}
	vt := NewVisaTools(fake)

	result, err := vt.HandleHelloWorld(context.Background(), callRequest("hello_world", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "client certificate not found")
}
