package tools

import (
	"visamcp/internal/visa"

	"github.com/mark3labs/mcp-go/mcp"
)

// VisaTools provides MCP tools backed by the Visa API client.
type VisaTools struct {
	client visa.API
}

// NewVisaTools creates the tool set for the given client.
func NewVisaTools(client visa.API) *VisaTools {
	return &VisaTools{client: client}
}

// GetTools returns all Visa tool definitions.
func (vt *VisaTools) GetTools() []mcp.Tool {
	tools := []mcp.Tool{}

	// Core tools
	tools = append(tools, vt.getCoreTools()...)

	// Visa Subscription Manager (VSM) tools
	tools = append(tools, vt.getSubscriptionManagerTools()...)

	// Visa Stop Payment Service (VSPS) tools
	tools = append(tools, vt.getStopPaymentTools()...)

	return tools
}

// Core tools
func (vt *VisaTools) getCoreTools() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool("hello_world",
			mcp.WithDescription("Test connectivity to the Visa API. Returns a hello world response to verify authentication is working."),
		),
		mcp.NewTool("get_exchange_rate",
			mcp.WithDescription("Get the foreign exchange rate between two currencies. Provide source and destination currency codes (e.g. USD, EUR, GBP) and the amount to convert."),
			mcp.WithString("source_currency",
				mcp.Required(),
				mcp.Description("Source currency code, e.g. USD"),
			),
			mcp.WithString("destination_currency",
				mcp.Required(),
				mcp.Description("Destination currency code, e.g. EUR"),
			),
			mcp.WithNumber("amount",
				mcp.Required(),
				mcp.Description("Amount in the source currency to convert"),
			),
		),
		mcp.NewTool("find_nearby_atms",
			mcp.WithDescription("Find nearby Visa ATMs. Provide latitude, longitude, and optionally a search radius (default 5) and unit (km or mi)."),
			mcp.WithNumber("latitude",
				mcp.Required(),
				mcp.Description("Latitude of the search center"),
			),
			mcp.WithNumber("longitude",
				mcp.Required(),
				mcp.Description("Longitude of the search center"),
			),
			mcp.WithNumber("distance",
				mcp.Description("Search radius (default 5)"),
			),
			mcp.WithString("distance_unit",
				mcp.Description("Radius unit: km or mi (default km)"),
				mcp.Enum("km", "mi"),
			),
		),
	}
}

// Visa Subscription Manager (VSM) tools
func (vt *VisaTools) getSubscriptionManagerTools() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool("vsm_search",
			mcp.WithDescription("Search for active subscription stop instructions for a card. Provide the card PAN (Primary Account Number)."),
			mcp.WithString("pan",
				mcp.Required(),
				mcp.Description("Card PAN to search for"),
			),
		),
		mcp.NewTool("vsm_merchant_details",
			mcp.WithDescription("Get merchant details for a subscription transaction. Provide the transaction ID."),
			mcp.WithString("transaction_id",
				mcp.Required(),
				mcp.Description("Transaction ID to look up"),
			),
		),
		mcp.NewTool("vsm_add_merchant",
			mcp.WithDescription("Add a merchant to stop subscription payments. Provide card PAN, merchant ID, and an optional reason."),
			mcp.WithString("pan",
				mcp.Required(),
				mcp.Description("Card PAN"),
			),
			mcp.WithString("merchant_id",
				mcp.Required(),
				mcp.Description("Merchant ID to stop payments to"),
			),
			mcp.WithString("reason",
				mcp.Description("Reason for the stop, e.g. 'Subscription cancellation'"),
			),
		),
		mcp.NewTool("vsm_cancel",
			mcp.WithDescription("Cancel an existing subscription stop instruction. Provide the stop instruction ID."),
			mcp.WithString("stop_id",
				mcp.Required(),
				mcp.Description("Stop instruction ID to cancel"),
			),
		),
	}
}

// Visa Stop Payment Service (VSPS) tools
func (vt *VisaTools) getStopPaymentTools() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool("vsps_search_instructions",
			mcp.WithDescription("Search for active stop payment instructions for a card. Provide the card PAN."),
			mcp.WithString("pan",
				mcp.Required(),
				mcp.Description("Card PAN to search for"),
			),
		),
		mcp.NewTool("vsps_search_eligible",
			mcp.WithDescription("Search for transactions eligible for stop payment. Provide the card PAN and optionally the number of days to look back (30-180, default 90)."),
			mcp.WithString("pan",
				mcp.Required(),
				mcp.Description("Card PAN to search for"),
			),
			mcp.WithNumber("days",
				mcp.Description("Look-back window in days (default 90)"),
				mcp.Min(30),
				mcp.Max(180),
			),
		),
		mcp.NewTool("vsps_add_stop",
			mcp.WithDescription("Add a stop payment instruction. Provide card PAN, level (merchant, mcc, or pan), and merchant_id or mcc depending on the level."),
			mcp.WithString("pan",
				mcp.Required(),
				mcp.Description("Card PAN"),
			),
			mcp.WithString("level",
				mcp.Required(),
				mcp.Description("Stop level: merchant (single merchant), mcc (merchant category), or pan (whole card)"),
				mcp.Enum("merchant", "mcc", "pan"),
			),
			mcp.WithString("merchant_id",
				mcp.Description("Merchant ID; used when level is merchant"),
			),
			mcp.WithString("mcc",
				mcp.Description("Merchant category code; used when level is mcc"),
			),
		),
		mcp.NewTool("vsps_cancel_stop",
			mcp.WithDescription("Cancel an existing stop payment instruction. Provide the stop instruction ID."),
			mcp.WithString("stop_id",
				mcp.Required(),
				mcp.Description("Stop instruction ID to cancel"),
			),
		),
		mcp.NewTool("vsps_update_stop",
			mcp.WithDescription("Update an existing stop payment instruction. Provide the stop ID and optionally a new merchant ID or notes."),
			mcp.WithString("stop_id",
				mcp.Required(),
				mcp.Description("Stop instruction ID to update"),
			),
			mcp.WithString("merchant_id",
				mcp.Description("New merchant ID for the instruction"),
			),
			mcp.WithString("notes",
				mcp.Description("Free-form notes to attach to the instruction"),
			),
		),
		mcp.NewTool("vsps_extend_stop",
			mcp.WithDescription("Extend the end date of a stop payment instruction. Provide the stop ID and the new end date (YYYY-MM-DD)."),
			mcp.WithString("stop_id",
				mcp.Required(),
				mcp.Description("Stop instruction ID to extend"),
			),
			mcp.WithString("new_end_date",
				mcp.Required(),
				mcp.Description("New end date in YYYY-MM-DD format"),
			),
		),
	}
}
