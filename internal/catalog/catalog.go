package catalog

// PillarCount is the length of the core curriculum chain.
const PillarCount = 9

// Question is one multiple-choice quiz item. Correct is the index into
// Options.
type Question struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Correct int      `json:"-"`
}

// Pillar is a static curriculum unit. Per-learner status is always derived,
// never stored here.
type Pillar struct {
	Index     int        `json:"index"`
	Title     string     `json:"title"`
	ModuleIDs []string   `json:"module_ids"`
	Quiz      []Question `json:"quiz"`
}

// Specialization is a post-curriculum elective track.
type Specialization struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	ModuleIDs []string `json:"module_ids"`
}

var pillars = []Pillar{
	{
		Index:     1,
		Title:     "Money Mindset",
		ModuleIDs: []string{"p1-m1", "p1-m2", "p1-m3"},
		Quiz: []Question{
			{ID: "p1-q1", Prompt: "What is the first step toward financial control?", Options: []string{"Tracking spending", "Opening a brokerage account", "Taking a loan", "Buying insurance"}, Correct: 0},
			{ID: "p1-q2", Prompt: "An emergency fund should cover roughly how many months of expenses?", Options: []string{"One week", "Three to six months", "Five years", "It is unnecessary"}, Correct: 1},
			{ID: "p1-q3", Prompt: "Which of these is a liability?", Options: []string{"A rental property", "A dividend stock", "Consumer debt", "An index fund"}, Correct: 2},
		},
	},
	{
		Index:     2,
		Title:     "Budgeting & Cash Flow",
		ModuleIDs: []string{"p2-m1", "p2-m2", "p2-m3", "p2-m4"},
		Quiz: []Question{
			{ID: "p2-q1", Prompt: "In a 50/30/20 budget, the 20 refers to", Options: []string{"Housing", "Wants", "Savings and debt repayment", "Groceries"}, Correct: 2},
			{ID: "p2-q2", Prompt: "Net cash flow is", Options: []string{"Income minus expenses", "Assets minus liabilities", "Salary before tax", "Credit limit"}, Correct: 0},
			{ID: "p2-q3", Prompt: "Which expense is fixed?", Options: []string{"Dining out", "Rent", "Entertainment", "Travel"}, Correct: 1},
		},
	},
	{
		Index:     3,
		Title:     "Debt & Credit",
		ModuleIDs: []string{"p3-m1", "p3-m2", "p3-m3"},
		Quiz: []Question{
			{ID: "p3-q1", Prompt: "The avalanche method pays off first the debt with", Options: []string{"The smallest balance", "The highest interest rate", "The oldest account", "The largest balance"}, Correct: 1},
			{ID: "p3-q2", Prompt: "A credit utilisation ratio should ideally stay below", Options: []string{"90%", "70%", "30%", "100%"}, Correct: 2},
			{ID: "p3-q3", Prompt: "Compound interest on debt means", Options: []string{"Interest accrues on accrued interest", "Interest is waived", "Payments are fixed", "The rate is negative"}, Correct: 0},
		},
	},
	{
		Index:     4,
		Title:     "Saving & Emergency Funds",
		ModuleIDs: []string{"p4-m1", "p4-m2", "p4-m3"},
		Quiz: []Question{
			{ID: "p4-q1", Prompt: "Where should an emergency fund live?", Options: []string{"In long-term bonds", "In a liquid savings account", "In crypto", "In collectibles"}, Correct: 1},
			{ID: "p4-q2", Prompt: "Paying yourself first means", Options: []string{"Spending before saving", "Automating savings on payday", "Maxing credit cards", "Deferring all purchases"}, Correct: 1},
			{ID: "p4-q3", Prompt: "Inflation erodes", Options: []string{"Purchasing power", "Interest rates", "Salaries only", "Debt principal"}, Correct: 0},
		},
	},
	{
		Index:     5,
		Title:     "Investing Fundamentals",
		ModuleIDs: []string{"p5-m1", "p5-m2", "p5-m3", "p5-m4"},
		Quiz: []Question{
			{ID: "p5-q1", Prompt: "Diversification primarily reduces", Options: []string{"Fees", "Unsystematic risk", "Taxes", "Liquidity"}, Correct: 1},
			{ID: "p5-q2", Prompt: "An index fund tracks", Options: []string{"A single company", "A market benchmark", "A commodity", "A currency pair"}, Correct: 1},
			{ID: "p5-q3", Prompt: "Time in the market beats", Options: []string{"Timing the market", "Dollar-cost averaging", "Rebalancing", "Compounding"}, Correct: 0},
		},
	},
	{
		Index:     6,
		Title:     "Income & Career Capital",
		ModuleIDs: []string{"p6-m1", "p6-m2", "p6-m3"},
		Quiz: []Question{
			{ID: "p6-q1", Prompt: "Active income requires", Options: []string{"Ongoing work", "No effort", "Only capital", "Inheritance"}, Correct: 0},
			{ID: "p6-q2", Prompt: "A side business converts time into", Options: []string{"Liabilities", "Equity and cash flow", "Debt", "Taxes only"}, Correct: 1},
			{ID: "p6-q3", Prompt: "Negotiating salary is most effective", Options: []string{"Never", "With market data in hand", "By ultimatum", "Only at resignation"}, Correct: 1},
		},
	},
	{
		Index:     7,
		Title:     "Taxes & Legal Structures",
		ModuleIDs: []string{"p7-m1", "p7-m2", "p7-m3"},
		Quiz: []Question{
			{ID: "p7-q1", Prompt: "Tax-advantaged accounts", Options: []string{"Defer or shelter gains", "Eliminate all tax", "Are illegal", "Only exist for companies"}, Correct: 0},
			{ID: "p7-q2", Prompt: "A marginal tax rate applies to", Options: []string{"All income", "The last unit of income", "Capital only", "Savings interest only"}, Correct: 1},
			{ID: "p7-q3", Prompt: "Keeping records matters because", Options: []string{"Audits require evidence", "It raises your rate", "It is optional everywhere", "Banks demand it"}, Correct: 0},
		},
	},
	{
		Index:     8,
		Title:     "Risk & Protection",
		ModuleIDs: []string{"p8-m1", "p8-m2", "p8-m3"},
		Quiz: []Question{
			{ID: "p8-q1", Prompt: "Insurance transfers", Options: []string{"Returns", "Risk", "Ownership", "Debt"}, Correct: 1},
			{ID: "p8-q2", Prompt: "An estate plan covers", Options: []string{"Daily budgeting", "Asset transfer on death", "Stock picking", "Salary negotiation"}, Correct: 1},
			{ID: "p8-q3", Prompt: "Concentration risk grows when", Options: []string{"Holdings are spread wide", "One position dominates", "Cash is held", "Bonds are added"}, Correct: 1},
		},
	},
	{
		Index:     9,
		Title:     "Wealth Strategy",
		ModuleIDs: []string{"p9-m1", "p9-m2", "p9-m3", "p9-m4"},
		Quiz: []Question{
			{ID: "p9-q1", Prompt: "Financial independence is reached when", Options: []string{"Passive income covers expenses", "Salary doubles", "Debt is refinanced", "A house is bought"}, Correct: 0},
			{ID: "p9-q2", Prompt: "The safe withdrawal rule of thumb is roughly", Options: []string{"25%", "10%", "4%", "50%"}, Correct: 2},
			{ID: "p9-q3", Prompt: "A written plan should be reviewed", Options: []string{"Never", "Periodically", "Hourly", "Only in crises"}, Correct: 1},
		},
	},
}

var specializations = []Specialization{
	{ID: "real-estate", Title: "Real Estate", ModuleIDs: []string{"sre-m1", "sre-m2", "sre-m3", "sre-m4"}},
	{ID: "stock-market", Title: "Stock Market", ModuleIDs: []string{"ssm-m1", "ssm-m2", "ssm-m3", "ssm-m4"}},
	{ID: "entrepreneurship", Title: "Entrepreneurship", ModuleIDs: []string{"sen-m1", "sen-m2", "sen-m3", "sen-m4"}},
}

// Pillars returns the ordered curriculum chain.
func Pillars() []Pillar {
	return pillars
}

// PillarByIndex resolves a pillar by its 1-based index.
func PillarByIndex(index int) (*Pillar, bool) {
	if index < 1 || index > len(pillars) {
		return nil, false
	}
	return &pillars[index-1], true
}

// Modules returns the module IDs belonging to a pillar, or nil for an unknown
// index.
func Modules(index int) []string {
	p, ok := PillarByIndex(index)
	if !ok {
		return nil
	}
	return p.ModuleIDs
}

// ModulePillar resolves which pillar a module belongs to.
func ModulePillar(moduleID string) (*Pillar, bool) {
	for i := range pillars {
		for _, id := range pillars[i].ModuleIDs {
			if id == moduleID {
				return &pillars[i], true
			}
		}
	}
	return nil, false
}

// Specializations returns the elective tracks.
func Specializations() []Specialization {
	return specializations
}

// SpecializationByID resolves a specialization track.
func SpecializationByID(id string) (*Specialization, bool) {
	for i := range specializations {
		if specializations[i].ID == id {
			return &specializations[i], true
		}
	}
	return nil, false
}

// SpecializationModule reports whether the module belongs to any track.
func SpecializationModule(moduleID string) (*Specialization, bool) {
	for i := range specializations {
		for _, id := range specializations[i].ModuleIDs {
			if id == moduleID {
				return &specializations[i], true
			}
		}
	}
	return nil, false
}
