package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"visamcp/internal/visa"

	"github.com/mark3labs/mcp-go/mcp"
)

// resultFromJSON wraps a raw upstream payload into a text result. The payload
// is re-indented but otherwise passed through unmodified.
func resultFromJSON(raw json.RawMessage) *mcp.CallToolResult {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return mcp.NewToolResultText(string(raw))
	}
	return mcp.NewToolResultText(buf.String())
}

// HandleHelloWorld handles the hello_world tool call.
func (vt *VisaTools) HandleHelloWorld(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := vt.client.HelloWorld(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Visa connectivity check failed: %v", err)), nil
	}
	return resultFromJSON(result), nil
}

// HandleGetExchangeRate handles the get_exchange_rate tool call.
func (vt *VisaTools) HandleGetExchangeRate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source_currency")
	if err != nil {
		return mcp.NewToolResultError("source_currency is required"), nil
	}
	destination, err := req.RequireString("destination_currency")
	if err != nil {
		return mcp.NewToolResultError("destination_currency is required"), nil
	}
	amount, err := req.RequireFloat("amount")
	if err != nil {
		return mcp.NewToolResultError("amount is required and must be a number"), nil
	}

	result, err := vt.client.ExchangeRate(ctx, visa.ExchangeRateRequest{
		SourceCurrency:      source,
		DestinationCurrency: destination,
		Amount:              amount,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get exchange rate: %v", err)), nil
	}
	return resultFromJSON(result), nil
}

// HandleFindNearbyATMs handles the find_nearby_atms tool call.
func (vt *VisaTools) HandleFindNearbyATMs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	latitude, err := req.RequireFloat("latitude")
	if err != nil {
		return mcp.NewToolResultError("latitude is required and must be a number"), nil
	}
	longitude, err := req.RequireFloat("longitude")
	if err != nil {
		return mcp.NewToolResultError("longitude is required and must be a number"), nil
	}
	distance := req.GetInt("distance", 0)
	unit := req.GetString("distance_unit", "")

	result, err := vt.client.ATMSearch(ctx, visa.ATMSearchRequest{
		Latitude:     latitude,
		Longitude:    longitude,
		Distance:     distance,
		DistanceUnit: unit,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search for ATMs: %v", err)), nil
	}

	if countATMs(result) == 0 {
		return mcp.NewToolResultText("No ATMs found near the given location."), nil
	}
	return resultFromJSON(result), nil
}

// countATMs sums the found ATM locations across the response data blocks.
// An unparseable payload counts as non-empty so it is surfaced verbatim.
func countATMs(raw json.RawMessage) int {
	var resp struct {
		ResponseData []struct {
			FoundATMLocations []json.RawMessage `json:"foundATMLocations"`
		} `json:"responseData"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil || resp.ResponseData == nil {
		return -1
	}
	total := 0
	for _, block := range resp.ResponseData {
		total += len(block.FoundATMLocations)
	}
	return total
}

// HandleVSMSearch handles the vsm_search tool call.
func (vt *VisaTools) HandleVSMSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pan, err := req.RequireString("pan")
	if err != nil {
		return mcp.NewToolResultError("pan is required"), nil
	}

	result, err := vt.client.SubscriptionSearch(ctx, pan)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search subscription stops: %v", err)), nil
	}
	return resultFromJSON(result), nil
}

// HandleVSMMerchantDetails handles the vsm_merchant_details tool call.
func (vt *VisaTools) HandleVSMMerchantDetails(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	transactionID, err := req.RequireString("transaction_id")
	if err != nil {
		return mcp.NewToolResultError("transaction_id is required"), nil
	}

	result, err := vt.client.MerchantDetails(ctx, transactionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get merchant details: %v", err)), nil
	}
	return resultFromJSON(result), nil
}

// HandleVSMAddMerchant handles the vsm_add_merchant tool call.
func (vt *VisaTools) HandleVSMAddMerchant(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pan, err := req.RequireString("pan")
	if err != nil {
		return mcp.NewToolResultError("pan is required"), nil
	}
	merchantID, err := req.RequireString("merchant_id")
	if err != nil {
		return mcp.NewToolResultError("merchant_id is required"), nil
	}
	reason := req.GetString("reason", "")

	result, err := vt.client.AddStopMerchant(ctx, visa.AddStopMerchantRequest{
		PAN:        pan,
		MerchantID: merchantID,
		Reason:     reason,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to add stop merchant: %v", err)), nil
	}
	return resultFromJSON(result), nil
}

// HandleVSMCancel handles the vsm_cancel tool call.
func (vt *VisaTools) HandleVSMCancel(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stopID, err := req.RequireString("stop_id")
	if err != nil {
		return mcp.NewToolResultError("stop_id is required"), nil
	}

	result, err := vt.client.CancelSubscriptionStop(ctx, stopID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to cancel subscription stop: %v", err)), nil
	}
	return resultFromJSON(result), nil
}

// HandleVSPSSearchInstructions handles the vsps_search_instructions tool call.
func (vt *VisaTools) HandleVSPSSearchInstructions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pan, err := req.RequireString("pan")
	if err != nil {
		return mcp.NewToolResultError("pan is required"), nil
	}

	result, err := vt.client.StopInstructionSearch(ctx, pan)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search stop instructions: %v", err)), nil
	}
	return resultFromJSON(result), nil
}

// HandleVSPSSearchEligible handles the vsps_search_eligible tool call.
func (vt *VisaTools) HandleVSPSSearchEligible(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pan, err := req.RequireString("pan")
	if err != nil {
		return mcp.NewToolResultError("pan is required"), nil
	}
	days := req.GetInt("days", 90)
	if days < 30 || days > 180 {
		return mcp.NewToolResultError("days must be between 30 and 180"), nil
	}

	result, err := vt.client.EligibleTransactionSearch(ctx, pan, days)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search eligible transactions: %v", err)), nil
	}
	return resultFromJSON(result), nil
}

// HandleVSPSAddStop handles the vsps_add_stop tool call.
func (vt *VisaTools) HandleVSPSAddStop(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pan, err := req.RequireString("pan")
	if err != nil {
		return mcp.NewToolResultError("pan is required"), nil
	}
	level, err := req.RequireString("level")
	if err != nil {
		return mcp.NewToolResultError("level is required"), nil
	}
	switch level {
	case visa.LevelMerchant, visa.LevelMCC, visa.LevelPAN:
	default:
		return mcp.NewToolResultError("level must be one of: merchant, mcc, pan"), nil
	}

	result, err := vt.client.AddStopInstruction(ctx, visa.AddStopInstructionRequest{
		PAN:        pan,
		Level:      level,
		MerchantID: req.GetString("merchant_id", ""),
		MCC:        req.GetString("mcc", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to add stop instruction: %v", err)), nil
	}
	return resultFromJSON(result), nil
}

// HandleVSPSCancelStop handles the vsps_cancel_stop tool call.
func (vt *VisaTools) HandleVSPSCancelStop(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stopID, err := req.RequireString("stop_id")
	if err != nil {
		return mcp.NewToolResultError("stop_id is required"), nil
	}

	result, err := vt.client.CancelStopInstruction(ctx, stopID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to cancel stop instruction: %v", err)), nil
	}
	return resultFromJSON(result), nil
}

// HandleVSPSUpdateStop handles the vsps_update_stop tool call.
func (vt *VisaTools) HandleVSPSUpdateStop(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stopID, err := req.RequireString("stop_id")
	if err != nil {
		return mcp.NewToolResultError("stop_id is required"), nil
	}

	result, err := vt.client.UpdateStopInstruction(ctx, visa.UpdateStopInstructionRequest{
		StopID:     stopID,
		MerchantID: req.GetString("merchant_id", ""),
		Notes:      req.GetString("notes", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update stop instruction: %v", err)), nil
	}
	return resultFromJSON(result), nil
}

// HandleVSPSExtendStop handles the vsps_extend_stop tool call.
func (vt *VisaTools) HandleVSPSExtendStop(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stopID, err := req.RequireString("stop_id")
	if err != nil {
		return mcp.NewToolResultError("stop_id is required"), nil
	}
	newEndDate, err := req.RequireString("new_end_date")
	if err != nil {
		return mcp.NewToolResultError("new_end_date is required"), nil
	}

	result, err := vt.client.ExtendStopInstruction(ctx, stopID, newEndDate)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to extend stop instruction: %v", err)), nil
	}
	return resultFromJSON(result), nil
}

// Handlers maps tool names to their handler functions, in the same order as
// GetTools.
func (vt *VisaTools) Handlers() map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"hello_world":              vt.HandleHelloWorld,
		"get_exchange_rate":        vt.HandleGetExchangeRate,
		"find_nearby_atms":         vt.HandleFindNearbyATMs,
		"vsm_search":               vt.HandleVSMSearch,
		"vsm_merchant_details":     vt.HandleVSMMerchantDetails,
		"vsm_add_merchant":         vt.HandleVSMAddMerchant,
		"vsm_cancel":               vt.HandleVSMCancel,
		"vsps_search_instructions": vt.HandleVSPSSearchInstructions,
		"vsps_search_eligible":     vt.HandleVSPSSearchEligible,
		"vsps_add_stop":            vt.HandleVSPSAddStop,
		"vsps_cancel_stop":         vt.HandleVSPSCancelStop,
		"vsps_update_stop":         vt.HandleVSPSUpdateStop,
		"vsps_extend_stop":         vt.HandleVSPSExtendStop,
	}
}
