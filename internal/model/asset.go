package model

// AssetClass labels the broad category an asset belongs to.
type AssetClass string

const (
	AssetClassEquity      AssetClass = "Equity"
	AssetClassFixedIncome AssetClass = "FixedIncome"
	AssetClassCash        AssetClass = "Cash"
	AssetClassRealEstate  AssetClass = "RealEstate"
	AssetClassCommodity   AssetClass = "Commodity"
	AssetClassCrypto      AssetClass = "Crypto"
	AssetClassOther       AssetClass = "Other"
)

// Asset is anything a holding can contain: a priced security or a cash balance.
// Valuation and attribution treat both variants through this capability only.
type Asset interface {
	Code() string
	Currency() Currency
	AssetClass() AssetClass
}

// Symbol is a tradable security quoted in Quote currency.
type Symbol struct {
	Ticker string
	Quote  Currency
	Class  AssetClass
}

func (s Symbol) Code() string       { return s.Ticker }
func (s Symbol) Currency() Currency { return s.Quote }

// AssetClass returns the declared class, Other when none was declared.
func (s Symbol) AssetClass() AssetClass {
	if s.Class == "" {
		return AssetClassOther
	}
	return s.Class
}

// CashAsset is the pseudo-asset for a cash balance. Its code is the currency code.
type CashAsset struct {
	Denomination Currency
}

func (c CashAsset) Code() string           { return string(c.Denomination) }
func (c CashAsset) Currency() Currency     { return c.Denomination }
func (c CashAsset) AssetClass() AssetClass { return AssetClassCash }

// IsCash reports whether the asset is valued as cash.
func IsCash(a Asset) bool {
	return a != nil && a.AssetClass() == AssetClassCash
}
