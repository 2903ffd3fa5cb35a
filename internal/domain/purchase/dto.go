package purchase

import (
	"github.com/google/uuid"

	"github.com/swiftvtu/swiftvtu-api/internal/domain/wallet"
)

// AirtimeRequest for POST /purchase/airtime
type AirtimeRequest struct {
	Network string `json:"network" validate:"required,network"`
	Phone   string `json:"phone" validate:"required,ng_phone"`
	Amount  int64  `json:"amount" validate:"required,gte=1"`
	PIN     string `json:"pin,omitempty" validate:"omitempty,pin"`
}

// DataRequest for POST /purchase/data
type DataRequest struct {
	Network  string `json:"network" validate:"required,network"`
	Phone    string `json:"phone" validate:"required,ng_phone"`
	PlanID   string `json:"plan_id" validate:"required,min=1,max=64"`
	PlanName string `json:"plan_name,omitempty" validate:"max=128"`
	Amount   int64  `json:"amount" validate:"required,gte=1"`
	PIN      string `json:"pin,omitempty" validate:"omitempty,pin"`
}

// CableRequest for POST /purchase/cable
type CableRequest struct {
	Provider  string `json:"provider" validate:"required,oneof=dstv gotv startimes"`
	Smartcard string `json:"smartcard" validate:"required,min=8,max=16"`
	PlanID    string `json:"plan_id" validate:"required,min=1,max=64"`
	Amount    int64  `json:"amount" validate:"required,gte=1"`
	PIN       string `json:"pin,omitempty" validate:"omitempty,pin"`
}

// ElectricityRequest for POST /purchase/electricity
type ElectricityRequest struct {
	Disco       string `json:"disco" validate:"required,min=2,max=64"`
	MeterNumber string `json:"meter_number" validate:"required,min=6,max=16"`
	MeterType   string `json:"meter_type" validate:"required,oneof=prepaid postpaid"`
	Amount      int64  `json:"amount" validate:"required,gte=1"`
	PIN         string `json:"pin,omitempty" validate:"omitempty,pin"`
}

// BettingRequest for POST /purchase/betting
type BettingRequest struct {
	Platform   string `json:"platform" validate:"required,min=2,max=64"`
	CustomerID string `json:"customer_id" validate:"required,min=4,max=32"`
	Amount     int64  `json:"amount" validate:"required,gte=1"`
	PIN        string `json:"pin,omitempty" validate:"omitempty,pin"`
}

// VerifyCustomerRequest for POST /purchase/verify
type VerifyCustomerRequest struct {
	Category   string `json:"category" validate:"required,oneof=cable electricity betting"`
	Provider   string `json:"provider" validate:"required,min=2,max=64"`
	Identifier string `json:"identifier" validate:"required,min=4,max=32"`
	MeterType  string `json:"meter_type,omitempty" validate:"omitempty,oneof=prepaid postpaid"`
}

// PurchaseResponse is the uniform success payload across all categories
type PurchaseResponse struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	Category      string    `json:"category"`
	Amount        int64     `json:"amount"`
	VendorRef     string    `json:"vendor_ref"`
	Token         string    `json:"token,omitempty"`
	NewBalance    int64     `json:"new_balance"`
}

// CustomerResponse is the resolved identity for a verification round-trip
type CustomerResponse struct {
	CustomerName string `json:"customer_name"`
	Address      string `json:"address,omitempty"`
}

func purchaseResponse(res *Result) *PurchaseResponse {
	return &PurchaseResponse{
		TransactionID: res.EntryID,
		Category:      string(res.Category),
		Amount:        res.Amount,
		VendorRef:     res.VendorRef,
		Token:         res.Token,
		NewBalance:    res.NewBalance,
	}
}

func (r *AirtimeRequest) input() Input {
	return Input{Category: wallet.CategoryAirtime, Amount: r.Amount, PIN: r.PIN, Network: r.Network, Phone: r.Phone}
}

func (r *DataRequest) input() Input {
	return Input{Category: wallet.CategoryData, Amount: r.Amount, PIN: r.PIN, Network: r.Network, Phone: r.Phone, PlanID: r.PlanID, PlanName: r.PlanName}
}

func (r *CableRequest) input() Input {
	return Input{Category: wallet.CategoryCable, Amount: r.Amount, PIN: r.PIN, Provider: r.Provider, Identifier: r.Smartcard, PlanID: r.PlanID}
}

func (r *ElectricityRequest) input() Input {
	return Input{Category: wallet.CategoryElectricity, Amount: r.Amount, PIN: r.PIN, Provider: r.Disco, Identifier: r.MeterNumber, MeterType: r.MeterType}
}

func (r *BettingRequest) input() Input {
	return Input{Category: wallet.CategoryBetting, Amount: r.Amount, PIN: r.PIN, Provider: r.Platform, Identifier: r.CustomerID}
}
