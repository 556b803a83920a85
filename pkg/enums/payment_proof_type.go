package enums

import "fmt"

// PaymentProofType classifies a buyer-submitted payment evidence.
type PaymentProofType string

const (
	PaymentProofTypeDownpayment PaymentProofType = "downpayment"
	PaymentProofTypeFullPayment PaymentProofType = "fullpayment"
	PaymentProofTypeCODBalance  PaymentProofType = "cod_balance"
)

var validPaymentProofTypes = []PaymentProofType{
	PaymentProofTypeDownpayment,
	PaymentProofTypeFullPayment,
	PaymentProofTypeCODBalance,
}

// String implements fmt.Stringer.
func (t PaymentProofType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known PaymentProofType.
func (t PaymentProofType) IsValid() bool {
	for _, candidate := range validPaymentProofTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParsePaymentProofType converts raw input into a PaymentProofType.
func ParsePaymentProofType(value string) (PaymentProofType, error) {
	for _, candidate := range validPaymentProofTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment proof type %q", value)
}
