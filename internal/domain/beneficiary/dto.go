package beneficiary

// SaveRequest for POST /beneficiaries
type SaveRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=64"`
	ServiceType string `json:"service_type" validate:"required,oneof=airtime data cable electricity betting"`
	Provider    string `json:"provider" validate:"required,min=2,max=64"`
	Identifier  string `json:"identifier" validate:"required,min=4,max=32"`
}
