package models

import "time"

// Dataset identifies one of the remote financial datasets.
type Dataset string

const (
	DatasetNetWorth         Dataset = "net_worth"
	DatasetCreditReport     Dataset = "credit_report"
	DatasetRetirementFund   Dataset = "epf_details"
	DatasetFundTransactions Dataset = "mf_transactions"
	DatasetBankTransactions Dataset = "bank_transactions"
)

// Asset is one entry of a net worth breakdown.
type Asset struct {
	Type           string  `json:"type"`
	Value          float64 `json:"value"`
	FormattedValue string  `json:"formattedValue"`
}

// NetWorthRecord is the normalized net worth dataset.
type NetWorthRecord struct {
	TotalValue          float64        `json:"totalValue"`
	FormattedTotalValue string         `json:"formattedTotalValue"`
	Currency            string         `json:"currency"`
	Assets              []Asset        `json:"assets"`
	MutualFundAnalytics map[string]any `json:"mutualFundAnalytics,omitempty"`
	AccountDetails      map[string]any `json:"accountDetails,omitempty"`
	Reason              string         `json:"reason,omitempty"`
}

// CreditAccount is one account row of a credit report.
type CreditAccount struct {
	ID             string  `json:"id"`
	Subscriber     string  `json:"subscriber"`
	AccountType    string  `json:"accountType"`
	CreditLimit    float64 `json:"creditLimit"`
	CurrentBalance float64 `json:"currentBalance"`
	PaymentRating  string  `json:"paymentRating"`
	AccountStatus  string  `json:"accountStatus"`
	OpenDate       string  `json:"openDate"`
}

// CreditRecord is the normalized credit report.
// Score is nil when the bureau returned no score.
type CreditRecord struct {
	Score              *int            `json:"score"`
	Accounts           []CreditAccount `json:"accounts"`
	TotalAccounts      int             `json:"totalAccounts"`
	ActiveAccounts     int             `json:"activeAccounts"`
	OutstandingBalance float64         `json:"outstandingBalance"`
	Reason             string          `json:"reason,omitempty"`
}

// EmployerShare is one establishment's contribution to a retirement fund.
type EmployerShare struct {
	Establishment string  `json:"establishment"`
	Balance       float64 `json:"employerShareBalance"`
}

// RetirementFundRecord is the normalized EPF dataset.
type RetirementFundRecord struct {
	TotalBalance    float64         `json:"totalBalance"`
	EmployeeShare   float64         `json:"employeeShare"`
	EmployerShare   float64         `json:"employerShare"`
	PensionBalance  float64         `json:"pensionBalance"`
	EmployerDetails []EmployerShare `json:"employerDetails"`
	Reason          string          `json:"reason,omitempty"`
}

// FundOrderType classifies a mutual fund transaction.
type FundOrderType string

const (
	FundOrderBuy  FundOrderType = "BUY"
	FundOrderSell FundOrderType = "SELL"
)

// FundTransaction is one mutual fund transaction tagged with its scheme.
type FundTransaction struct {
	ISIN       string        `json:"isin"`
	FolioID    string        `json:"folioId"`
	Type       FundOrderType `json:"type"`
	Date       string        `json:"date"`
	Amount     float64       `json:"amount"`
	Units      float64       `json:"units"`
	NAV        float64       `json:"nav"`
	SchemeName string        `json:"schemeName"`
}

// FundSchemeAggregate folds all transactions of one scheme.
// Totals are not clamped: a scheme sold below cost can go negative.
type FundSchemeAggregate struct {
	ISIN          string            `json:"isin"`
	SchemeName    string            `json:"schemeName"`
	Transactions  []FundTransaction `json:"transactions"`
	TotalInvested float64           `json:"totalInvested"`
	TotalUnits    float64           `json:"totalUnits"`
}

// FundTransactionsRecord is the normalized mutual fund dataset.
type FundTransactionsRecord struct {
	Transactions []FundTransaction     `json:"transactions"`
	Schemes      []FundSchemeAggregate `json:"schemes"`
	Reason       string                `json:"reason,omitempty"`
}

// BankTxnType labels a bank transaction.
type BankTxnType string

const (
	BankTxnCredit      BankTxnType = "CREDIT"
	BankTxnDebit       BankTxnType = "DEBIT"
	BankTxnOpening     BankTxnType = "OPENING"
	BankTxnInterest    BankTxnType = "INTEREST"
	BankTxnTDS         BankTxnType = "TDS"
	BankTxnInstallment BankTxnType = "INSTALLMENT"
	BankTxnClosing     BankTxnType = "CLOSING"
	BankTxnOthers      BankTxnType = "OTHERS"
	BankTxnUnknown     BankTxnType = "UNKNOWN"
)

// BankTransaction is one bank transaction tagged with its bank.
type BankTransaction struct {
	Bank      string      `json:"bank"`
	Amount    float64     `json:"amount"`
	Narration string      `json:"narration"`
	Date      string      `json:"date"`
	Type      BankTxnType `json:"type"`
	Mode      string      `json:"mode"`
	Balance   float64     `json:"balance"`
}

// BankAggregate folds all transactions of one bank.
// CurrentBalance is the maximum balance observed across the bank's
// transactions, not the balance of the latest one.
type BankAggregate struct {
	Bank           string            `json:"bank"`
	Transactions   []BankTransaction `json:"transactions"`
	TotalCredits   float64           `json:"totalCredits"`
	TotalDebits    float64           `json:"totalDebits"`
	CurrentBalance float64           `json:"currentBalance"`
}

// BankTransactionsRecord is the normalized bank dataset.
type BankTransactionsRecord struct {
	Transactions []BankTransaction `json:"transactions"`
	Banks        []BankAggregate   `json:"banks"`
	Reason       string            `json:"reason,omitempty"`
}

// OverviewRecord combines every dataset for one identity. Datasets
// that failed to fetch are absent and listed in Errors instead.
type OverviewRecord struct {
	Identity   string                  `json:"identity"`
	Timestamp  time.Time               `json:"timestamp"`
	NetWorth   *NetWorthRecord         `json:"netWorth,omitempty"`
	Credit     *CreditRecord           `json:"credit,omitempty"`
	Retirement *RetirementFundRecord   `json:"retirement,omitempty"`
	Funds      *FundTransactionsRecord `json:"funds,omitempty"`
	Banks      *BankTransactionsRecord `json:"banks,omitempty"`
	Errors     map[string]string       `json:"errors,omitempty"`
}

// Snapshot carries one fetched-and-normalized dataset for publishing
// and archival.
type Snapshot struct {
	EventID   string    `json:"eventId"`
	Dataset   Dataset   `json:"dataset"`
	Identity  string    `json:"identity"`
	FetchedAt time.Time `json:"fetchedAt"`
	Record    any       `json:"record"`
}
