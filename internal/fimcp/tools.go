package fimcp

import "context"

// Fixed tool catalog consumed by this service. Schemas are remote-defined.
const (
	ToolNetWorth         = "fetch_net_worth"
	ToolCreditReport     = "fetch_credit_report"
	ToolEPFDetails       = "fetch_epf_details"
	ToolMFTransactions   = "fetch_mf_transactions"
	ToolBankTransactions = "fetch_bank_transactions"
)

// FetchNetWorth retrieves the net worth dataset.
func (c *Client) FetchNetWorth(ctx context.Context) (*ToolResult, error) {
	return c.CallTool(ctx, ToolNetWorth, nil)
}

// FetchCreditReport retrieves the credit report dataset.
func (c *Client) FetchCreditReport(ctx context.Context) (*ToolResult, error) {
	return c.CallTool(ctx, ToolCreditReport, nil)
}

// FetchRetirementDetails retrieves the EPF dataset.
func (c *Client) FetchRetirementDetails(ctx context.Context) (*ToolResult, error) {
	return c.CallTool(ctx, ToolEPFDetails, nil)
}

// FetchFundTransactions retrieves the mutual fund transactions dataset.
func (c *Client) FetchFundTransactions(ctx context.Context) (*ToolResult, error) {
	return c.CallTool(ctx, ToolMFTransactions, nil)
}

// FetchBankTransactions retrieves the bank transactions dataset.
func (c *Client) FetchBankTransactions(ctx context.Context) (*ToolResult, error) {
	return c.CallTool(ctx, ToolBankTransactions, nil)
}
