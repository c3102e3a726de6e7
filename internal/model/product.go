package model

// Competitor is a competing product named by the profiling stage.
type Competitor struct {
	Name           string `json:"name"`
	URL            string `json:"url,omitempty"`
	Differentiator string `json:"differentiator,omitempty"`
}

// ProductProfile is the profiling stage's view of the product being sold.
// Built once per run and immutable afterwards.
type ProductProfile struct {
	ProductName       string       `json:"product_name"`
	OfficialURL       string       `json:"official_url,omitempty"`
	Description       string       `json:"description,omitempty"`
	CoreFeatures      StringList   `json:"core_features,omitempty"`
	TargetUsers       StringList   `json:"target_users,omitempty"`
	UseCases          StringList   `json:"use_cases,omitempty"`
	PricingModel      string       `json:"pricing_model,omitempty"`
	Competitors       []Competitor `json:"competitors,omitempty"`
	MarketPosition    string       `json:"market_position,omitempty"`
	IdealBuyerPersona string       `json:"ideal_buyer_persona,omitempty"`
}
