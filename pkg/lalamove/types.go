package lalamove

// Coordinates is a WGS84 point in Lalamove's string encoding.
type Coordinates struct {
	Lat string `json:"lat"`
	Lng string `json:"lng"`
}

// Stop is one pickup or drop-off point on a quotation.
type Stop struct {
	Coordinates Coordinates `json:"coordinates"`
	Address     string      `json:"address"`
}

// QuotationParams describes the route to price.
type QuotationParams struct {
	ServiceType string
	Language    string
	Stops       []Stop
}

// PriceBreakdown is the quoted charge in the market currency.
type PriceBreakdown struct {
	Base         string `json:"base"`
	TotalExclVAT string `json:"totalExcludePriorityFee,omitempty"`
	Total        string `json:"total"`
	Currency     string `json:"currency"`
}

// Distance is the quoted route length, usually in meters.
type Distance struct {
	Value string `json:"value"`
	Unit  string `json:"unit"`
}

// QuotedStop echoes a Stop back with the courier-assigned stop id.
type QuotedStop struct {
	StopID      string      `json:"stopId"`
	Coordinates Coordinates `json:"coordinates"`
	Address     string      `json:"address"`
}

// Quotation is the priced route returned by the courier. It expires; a
// booking must reference it before ExpiresAt.
type Quotation struct {
	QuotationID    string         `json:"quotationId"`
	ScheduleAt     string         `json:"scheduleAt,omitempty"`
	ExpiresAt      string         `json:"expiresAt"`
	ServiceType    string         `json:"serviceType"`
	Language       string         `json:"language"`
	Stops          []QuotedStop   `json:"stops"`
	Distance       Distance       `json:"distance"`
	PriceBreakdown PriceBreakdown `json:"priceBreakdown"`
}

// Contact identifies the person at a stop.
type Contact struct {
	StopID string `json:"stopId"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
}

// OrderParams books a driver against a live quotation.
type OrderParams struct {
	QuotationID string
	Sender      Contact
	Recipients  []Contact
	Remarks     string
}

// Order is the courier's confirmed booking.
type Order struct {
	OrderID        string         `json:"orderId"`
	QuotationID    string         `json:"quotationId"`
	Status         string         `json:"status"`
	DriverID       string         `json:"driverId,omitempty"`
	ShareLink      string         `json:"shareLink"`
	PriceBreakdown PriceBreakdown `json:"priceBreakdown"`
}

type quotationRequest struct {
	ServiceType string `json:"serviceType"`
	Language    string `json:"language"`
	Stops       []Stop `json:"stops"`
}

type orderRequest struct {
	QuotationID string         `json:"quotationId"`
	Sender      Contact        `json:"sender"`
	Recipients  []Contact      `json:"recipients"`
	Metadata    *orderMetadata `json:"metadata,omitempty"`
}

type orderMetadata struct {
	Remarks string `json:"remarks,omitempty"`
}

// envelope matches Lalamove's {"data": ...} response wrapper.
type envelope[T any] struct {
	Data T `json:"data"`
}
