package engine

// Month is one row of the monthly ledger. Columns are populated in stage
// order: schedule, volume/revenue, COGS, OpEx, CapEx/depreciation, then the
// integrated P&L and cash flow. Expense lines carry a negative sign.
type Month struct {
	Index       int // 1-based month number
	Year        int // calendar year index within the forecast, 1-based
	MonthOfYear int // 1..12

	// Volume and revenue
	AnnualVolume      float64
	MonthlyVolume     float64
	TastingRoomPrice  float64
	ClubPrice         float64
	WholesalePrice    float64
	TastingRoomRev    float64
	ClubRev           float64
	WholesaleRev      float64
	Revenue           float64
	AvgPricePerBottle float64

	// Costs
	COGS               float64
	Payroll            float64
	Rent               float64
	UtilitiesInsurance float64
	Marketing          float64
	GA                 float64
	OpEx               float64

	// Capital
	CapEx        float64
	Depreciation float64

	// P&L
	GrossProfit float64
	EBITDA      float64
	EBIT        float64
	Interest    float64
	EBT         float64
	Taxes       float64
	NetIncome   float64

	// Cash flow
	CFO             float64
	CFI             float64
	CFF             float64
	FCF             float64
	NetCashFlow     float64
	RevolverDraw    float64 // positive for a draw, negative for a repayment
	RevolverBalance float64
	BeginningCash   float64
	EndingCash      float64

	// Metrics
	RunwayMonths float64
}

// Ledger is the month-indexed projection table, fully populated after a
// single Run call and treated as read-only output afterwards.
type Ledger []Month
