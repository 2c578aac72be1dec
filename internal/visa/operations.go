package visa

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Stop instruction levels accepted by the stop payment service.
const (
	LevelMerchant = "merchant"
	LevelMCC      = "mcc"
	LevelPAN      = "pan"
)

// ATM search defaults applied when the caller leaves them unset.
const (
	defaultATMDistance     = 5
	defaultATMDistanceUnit = "km"
)

// atmApplicationID identifies this integration in ATM locator requests.
const atmApplicationID = "VISA_MCP"

// API is the set of Visa operations exposed by the client. The tools layer
// depends on this interface so handlers can be tested against a fake.
type API interface {
	HelloWorld(ctx context.Context) (json.RawMessage, error)
	ExchangeRate(ctx context.Context, req ExchangeRateRequest) (json.RawMessage, error)
	ATMSearch(ctx context.Context, req ATMSearchRequest) (json.RawMessage, error)

	SubscriptionSearch(ctx context.Context, pan string) (json.RawMessage, error)
	MerchantDetails(ctx context.Context, transactionID string) (json.RawMessage, error)
	AddStopMerchant(ctx context.Context, req AddStopMerchantRequest) (json.RawMessage, error)
	CancelSubscriptionStop(ctx context.Context, stopID string) (json.RawMessage, error)

	StopInstructionSearch(ctx context.Context, pan string) (json.RawMessage, error)
	EligibleTransactionSearch(ctx context.Context, pan string, days int) (json.RawMessage, error)
	AddStopInstruction(ctx context.Context, req AddStopInstructionRequest) (json.RawMessage, error)
	CancelStopInstruction(ctx context.Context, stopID string) (json.RawMessage, error)
	UpdateStopInstruction(ctx context.Context, req UpdateStopInstructionRequest) (json.RawMessage, error)
	ExtendStopInstruction(ctx context.Context, stopID, newEndDate string) (json.RawMessage, error)
}

var _ API = (*Client)(nil)

// ExchangeRateRequest describes a foreign exchange rate lookup.
type ExchangeRateRequest struct {
	SourceCurrency      string
	DestinationCurrency string
	Amount              float64
}

// ATMSearchRequest describes a nearby-ATM search. Distance and DistanceUnit
// are optional; unset values fall back to 5 km.
type ATMSearchRequest struct {
	Latitude     float64
	Longitude    float64
	Distance     int
	DistanceUnit string
}

// AddStopMerchantRequest adds a merchant to the subscription stop list.
// Reason is optional and omitted from the wire when empty.
type AddStopMerchantRequest struct {
	PAN        string
	MerchantID string
	Reason     string
}

// AddStopInstructionRequest adds a stop payment instruction at merchant, MCC,
// or PAN level. MerchantID is sent only at merchant level and MCC only at MCC
// level; at PAN level neither field appears on the wire.
type AddStopInstructionRequest struct {
	PAN        string
	Level      string
	MerchantID string
	MCC        string
}

// UpdateStopInstructionRequest updates an existing stop payment instruction.
// MerchantID and Notes are optional and omitted from the wire when empty.
type UpdateStopInstructionRequest struct {
	StopID     string
	MerchantID string
	Notes      string
}

// HelloWorld performs the Visa connectivity check. A successful response
// proves the mutual-TLS handshake and credentials are working.
func (c *Client) HelloWorld(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/vdp/helloworld", nil)
}

// ExchangeRate looks up the foreign exchange rate between two currencies.
func (c *Client) ExchangeRate(ctx context.Context, req ExchangeRateRequest) (json.RawMessage, error) {
	// The FX API expects the amount as a string.
	body := struct {
		SourceCurrencyCode      string `json:"sourceCurrencyCode"`
		DestinationCurrencyCode string `json:"destinationCurrencyCode"`
		SourceAmount            string `json:"sourceAmount"`
	}{
		SourceCurrencyCode:      req.SourceCurrency,
		DestinationCurrencyCode: req.DestinationCurrency,
		SourceAmount:            strconv.FormatFloat(req.Amount, 'f', -1, 64),
	}
	return c.do(ctx, http.MethodPost, "/forexrates/v2/foreignexchangerates", body)
}

type atmRequestHeader struct {
	RequestTs        string `json:"requestTs"`
	ApplicationID    string `json:"applicationId"`
	RequestMessageID string `json:"requestMessageId"`
}

type atmGeocodes struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type atmRange struct {
	Distance     int    `json:"distance"`
	DistanceUnit string `json:"distanceUnit"`
}

type atmSort struct {
	Primary   string `json:"primary"`
	Direction string `json:"direction"`
}

type atmRequestBody struct {
	WsRequestHeaderV2 atmRequestHeader `json:"wsRequestHeaderV2"`
	RequestData       struct {
		Location struct {
			Geocodes atmGeocodes `json:"geocodes"`
		} `json:"location"`
		Options struct {
			Range       atmRange `json:"range"`
			FindFilters []string `json:"findFilters"`
			Sort        atmSort  `json:"sort"`
		} `json:"options"`
	} `json:"requestData"`
}

// ATMSearch finds Visa ATMs near a coordinate, sorted by distance.
func (c *Client) ATMSearch(ctx context.Context, req ATMSearchRequest) (json.RawMessage, error) {
	distance := req.Distance
	if distance <= 0 {
		distance = defaultATMDistance
	}
	unit := req.DistanceUnit
	if unit == "" {
		unit = defaultATMDistanceUnit
	}

	var body atmRequestBody
	body.WsRequestHeaderV2 = atmRequestHeader{
		RequestTs:        time.Now().UTC().Format(time.RFC3339),
		ApplicationID:    atmApplicationID,
		RequestMessageID: uuid.NewString(),
	}
	body.RequestData.Location.Geocodes = atmGeocodes{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	body.RequestData.Options.Range = atmRange{
		Distance:     distance,
		DistanceUnit: unit,
	}
	body.RequestData.Options.FindFilters = []string{}
	body.RequestData.Options.Sort = atmSort{
		Primary:   "distance",
		Direction: "asc",
	}

	return c.do(ctx, http.MethodPost, "/globalatmlocator/v1/localatms/atmLocator", body)
}

// SubscriptionSearch lists active subscription stop instructions for a card.
func (c *Client) SubscriptionSearch(ctx context.Context, pan string) (json.RawMessage, error) {
	body := struct {
		PAN string `json:"pan"`
	}{PAN: pan}
	return c.do(ctx, http.MethodPost, "/vsm/v1/search", body)
}

// MerchantDetails looks up the merchant behind a subscription transaction.
func (c *Client) MerchantDetails(ctx context.Context, transactionID string) (json.RawMessage, error) {
	body := struct {
		TransactionID string `json:"transactionId"`
	}{TransactionID: transactionID}
	return c.do(ctx, http.MethodPost, "/vsm/v1/merchantdetails", body)
}

// AddStopMerchant adds a merchant to the subscription stop list for a card.
func (c *Client) AddStopMerchant(ctx context.Context, req AddStopMerchantRequest) (json.RawMessage, error) {
	body := struct {
		PAN        string `json:"pan"`
		MerchantID string `json:"merchantId"`
		Reason     string `json:"reason,omitempty"`
	}{
		PAN:        req.PAN,
		MerchantID: req.MerchantID,
		Reason:     req.Reason,
	}
	return c.do(ctx, http.MethodPost, "/vsm/v1/addmerchant", body)
}

// CancelSubscriptionStop cancels an existing subscription stop instruction.
func (c *Client) CancelSubscriptionStop(ctx context.Context, stopID string) (json.RawMessage, error) {
	body := struct {
		StopID string `json:"stopId"`
	}{StopID: stopID}
	return c.do(ctx, http.MethodPost, "/vsm/v1/cancel", body)
}

// StopInstructionSearch lists active stop payment instructions for a card.
func (c *Client) StopInstructionSearch(ctx context.Context, pan string) (json.RawMessage, error) {
	body := struct {
		PAN string `json:"pan"`
	}{PAN: pan}
	return c.do(ctx, http.MethodPost, "/vsps/v1/stopinstructions/search", body)
}

// EligibleTransactionSearch lists transactions eligible for stop payment
// within the given look-back window in days.
func (c *Client) EligibleTransactionSearch(ctx context.Context, pan string, days int) (json.RawMessage, error) {
	body := struct {
		PAN              string `json:"pan"`
		SearchPeriodDays int    `json:"searchPeriodDays"`
	}{PAN: pan, SearchPeriodDays: days}
	return c.do(ctx, http.MethodPost, "/vsps/v1/eligibletransactions/search", body)
}

// AddStopInstruction adds a stop payment instruction.
func (c *Client) AddStopInstruction(ctx context.Context, req AddStopInstructionRequest) (json.RawMessage, error) {
	body := struct {
		PAN        string `json:"pan"`
		Level      string `json:"level"`
		MerchantID string `json:"merchantId,omitempty"`
		MCC        string `json:"mcc,omitempty"`
	}{
		PAN:   req.PAN,
		Level: req.Level,
	}
	// Qualifiers only apply at their own level; anything else stays off the wire.
	switch req.Level {
	case LevelMerchant:
		body.MerchantID = req.MerchantID
	case LevelMCC:
		body.MCC = req.MCC
	}
	return c.do(ctx, http.MethodPost, "/vsps/v1/stopinstructions/add", body)
}

// CancelStopInstruction cancels an existing stop payment instruction.
func (c *Client) CancelStopInstruction(ctx context.Context, stopID string) (json.RawMessage, error) {
	body := struct {
		StopID string `json:"stopId"`
	}{StopID: stopID}
	return c.do(ctx, http.MethodPost, "/vsps/v1/stopinstructions/cancel", body)
}

// UpdateStopInstruction updates an existing stop payment instruction.
func (c *Client) UpdateStopInstruction(ctx context.Context, req UpdateStopInstructionRequest) (json.RawMessage, error) {
	body := struct {
		StopID     string `json:"stopId"`
		MerchantID string `json:"merchantId,omitempty"`
		Notes      string `json:"notes,omitempty"`
	}{
		StopID:     req.StopID,
		MerchantID: req.MerchantID,
		Notes:      req.Notes,
	}
	return c.do(ctx, http.MethodPost, "/vsps/v1/stopinstructions/update", body)
}

// ExtendStopInstruction extends the end date of a stop payment instruction.
// newEndDate uses the YYYY-MM-DD format.
func (c *Client) ExtendStopInstruction(ctx context.Context, stopID, newEndDate string) (json.RawMessage, error) {
	body := struct {
		StopID     string `json:"stopId"`
		NewEndDate string `json:"newEndDate"`
	}{StopID: stopID, NewEndDate: newEndDate}
	return c.do(ctx, http.MethodPost, "/vsps/v1/stopinstructions/extend", body)
}
