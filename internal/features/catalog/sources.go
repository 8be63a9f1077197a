package catalog

var policyStatusOptions = []FilterOption{
	{Label: "Active", Value: "active"},
	{Label: "Pending", Value: "pending"},
	{Label: "Cancelled", Value: "cancelled"},
	{Label: "Expired", Value: "expired"},
}

var lineOfBusinessOptions = []FilterOption{
	{Label: "Auto", Value: "auto"},
	{Label: "Home", Value: "home"},
	{Label: "Commercial Property", Value: "commercial_property"},
	{Label: "General Liability", Value: "general_liability"},
	{Label: "Workers Compensation", Value: "workers_comp"},
	{Label: "Life", Value: "life"},
}

var claimStatusOptions = []FilterOption{
	{Label: "Open", Value: "open"},
	{Label: "In Review", Value: "in_review"},
	{Label: "Approved", Value: "approved"},
	{Label: "Denied", Value: "denied"},
	{Label: "Closed", Value: "closed"},
}

var invoiceStatusOptions = []FilterOption{
	{Label: "Draft", Value: "draft"},
	{Label: "Sent", Value: "sent"},
	{Label: "Paid", Value: "paid"},
	{Label: "Overdue", Value: "overdue"},
	{Label: "Void", Value: "void"},
}

func builtinSources() []ReportDataSource {
	return []ReportDataSource{
		policiesSource(),
		claimsSource(),
		commissionsSource(),
		clientsSource(),
		agentsSource(),
		invoicesSource(),
		payoutsSource(),
	}
}

func policiesSource() ReportDataSource {
	return ReportDataSource{
		ID:         "policies",
		Name:       "Policies",
		BaseEntity: "policies",
		BaseAlias:  "p",
		Joins: []Join{
			{Table: "clients", Alias: "c", Kind: JoinLeft, On: "c.id = p.client_id"},
			{Table: "agents", Alias: "a", Kind: JoinLeft, On: "a.id = p.agent_id"},
			{Table: "carriers", Alias: "cr", Kind: JoinLeft, On: "cr.id = p.carrier_id"},
		},
		Columns: []ColumnDef{
			{ID: "policy_number", Expression: "p.policy_number", Label: "Policy #", Type: ColumnText, Sortable: true, Filterable: true, DefaultVisible: true},
			{ID: "client_name", Expression: "c.name", Label: "Client", Type: ColumnText, Sortable: true, Filterable: true, DefaultVisible: true},
			{ID: "line_of_business", Expression: "p.line_of_business", Label: "Line of Business", Type: ColumnText, Sortable: true, Filterable: true, DefaultVisible: true},
			{ID: "carrier", Expression: "cr.name", Label: "Carrier", Type: ColumnText, Sortable: true, Filterable: true},
			{ID: "agent_name", Expression: "a.full_name", Label: "Agent", Type: ColumnText, Sortable: true, Filterable: true},
			{ID: "premium", Expression: "p.premium", Label: "Premium", Type: ColumnCurrency, Sortable: true, Filterable: true, DefaultVisible: true},
			{ID: "effective_date", Expression: "p.effective_date", Label: "Effective", Type: ColumnDate, Sortable: true, Filterable: true, DefaultVisible: true},
			{ID: "expiration_date", Expression: "p.expiration_date", Label: "Expires", Type: ColumnDate, Sortable: true, Filterable: true},
			{ID: "status", Expression: "p.status", Label: "Status", Type: ColumnText, Sortable: true, Filterable: true, DefaultVisible: true},
			{ID: "is_renewal", Expression: "p.is_renewal", Label: "Renewal", Type: ColumnBoolean, Filterable: true},
			{ID: "carrier_id", Expression: "p.carrier_id", Label: "Carrier ID", Type: ColumnText, Filterable: true, Excluded: true},
		},
		Filters: []FilterDef{
			{ID: "status", Label: "Status", Type: FilterMultiSelect, Expression: "p.status", ColumnID: "status", Options: policyStatusOptions},
			{ID: "line_of_business", Label: "Line of Business", Type: FilterMultiSelect, Expression: "p.line_of_business", ColumnID: "line_of_business", Options: lineOfBusinessOptions},
			{ID: "effective_date", Label: "Effective Date", Type: FilterDateRange, Expression: "p.effective_date", ColumnID: "effective_date"},
			{ID: "expiration_date", Label: "Expiration Date", Type: FilterDateRange, Expression: "p.expiration_date", ColumnID: "expiration_date"},
			{ID: "premium", Label: "Premium", Type: FilterNumber, Expression: "p.premium", ColumnID: "premium"},
			{ID: "client_name", Label: "Client Name", Type: FilterText, Expression: "c.name", ColumnID: "client_name"},
			{ID: "is_renewal", Label: "Renewal", Type: FilterBoolean, Expression: "p.is_renewal", ColumnID: "is_renewal"},
			{ID: "carrier_id", Label: "Carrier", Type: FilterSelect, Expression: "p.carrier_id", ColumnID: "carrier_id"},
		},
	}
}

func claimsSource() ReportDataSource {
	return ReportDataSource{
		ID:         "claims",
		Name:       "Claims",
		BaseEntity: "claims",
		BaseAlias:  "cl",
		Joins: []Join{
			{Table: "policies", Alias: "p", Kind: JoinInner, On: "p.id = cl.policy_id"},
			{Table: "clients", Alias: "c", Kind: JoinLeft, On: "c.id = p.client_id"},
		},
		Columns: []ColumnDef{
			{ID: "claim_number", Expression: "cl.claim_number", Label: "Claim #", Type: ColumnText, Sortable: true, Filterable: true, DefaultVisible: true},
			{ID: "policy_number", Expression: "p.policy_number", Label: "Policy #", Type: ColumnText, Sortable: true, Filterable: true, DefaultVisible: true},
			{ID: "client_name", Expression: "c.name", Label: "Client", Type: ColumnText, Sortable: true, Filterable: true, DefaultVisible: true},
			{ID: "loss_date", Expression: "cl.loss_date", Label: "Loss Date", Type: ColumnDate, Sortable: true, Filterable: true, DefaultVisible: true},
			{ID: "reported_date", Expression: "cl.reported_date", Label: "Reported", Type: ColumnDate, Sortable: true, Filterable: true},
			{ID: "claim_amount", Expression: "cl.claim_amount", Label: "Claimed", Type: ColumnCurrency, Sortable: true, Filterable: true, DefaultVisible: true},
			{ID: "paid_amount", Expression: "cl.paid_amount", Label: "Paid", Type: ColumnCurrency, Sortable: true, Filterable: true},
			{ID: "status", Expression: "cl.status", Label: "Status", Type: ColumnText, Sortable: true, Filterable: true, DefaultVisible: true},
			{ID: "adjuster", Expression: "cl.adjuster_name", Label: "Adjuster", Type: ColumnText, Sortable: true},
		},
		Filters: []FilterDef{
			{ID: "status", Label: "Status", Type: FilterMultiSelect, Expression: "cl.status", ColumnID: "status", Options: claimStatusOptions},
			{ID: "loss_date", Label: "Loss Date", Type: FilterDateRange, Expression: "cl.loss_date", ColumnID: "loss_date"},
			{ID: "claim_amount", Label: "Claim Amount", Type: FilterNumber, Expression: "cl.claim_amount", ColumnID: "claim_amount"},
			{ID: "policy_number", Label: "Policy Number", Type: FilterText, Expression: "p.policy_number", ColumnID: "policy_number"},
		},
	}
}

func commissionsSource() ReportDataSource {
	return ReportDataSource{
		ID:         "commissions",
		Name:       "Commissions",
		BaseEntity: "commissions",
		BaseAlias:  "cm",
		Joins: []Join{
			{Table: "policies", Alias: "p", Kind: JoinInner, On: "p.id = cm.policy_id"},
			{Table: "agents", Alias: "a", Kind: JoinInner, On: "a.id = cm.agent_id"},
		},
		Columns: []ColumnDef{
			{ID: "agent_name", Expression: "a.full_name", Label: "Agent", Type: ColumnText, Sortable: true, Filterable: true, DefaultVisible: true},
			{ID: "policy_number", Expression: "p.policy_number", Label: "Policy #", Type: ColumnText, Sortable: true, Filterable: true, DefaultVisible: true},
			{ID: "period", Expression: "cm.period_start", Label: "Period", Type: ColumnDate, Sortable: true, Filterable: true, DefaultVisible: true},
			{ID: "commission_rate", Expression: "cm.rate", Label: "Rate", Type: ColumnNumber, Sortable: true, Filterable: true},
			{ID: "commission_amount", Expression: "cm.amount", Label: "Commission", Type: ColumnCurrency, Sortable: true, Filterable: true, DefaultVisible: true},
			{ID: "paid", Expression: "cm.paid", Label: "Paid", Type: ColumnBoolean, Filterable: true, DefaultVisible: true},
		},
		Filters: []FilterDef{
			{ID: "period", Label: "Period", Type: FilterDateRange, Expression: "cm.period_start", ColumnID: "period", Required: true},
			{ID: "agent_name", Label: "Agent", Type: FilterText, Expression: "a.full_name", ColumnID: "agent_name"},
			{ID: "paid", Label: "Paid", Type: FilterBoolean, Expression: "cm.paid", ColumnID: "paid"},
			{ID: "commission_amount", Label: "Commission Amount", Type: FilterNumber, Expression: "cm.amount", ColumnID: "commission_amount"},
		},
	}
}

func clientsSource() ReportDataSource {
	return ReportDataSource{
		ID:         "clients",
		Name:       "Clients",
		BaseEntity: "clients",
		BaseAlias:  "c",
		Joins: []Join{
			{Table: "agents", Alias: "a", Kind: JoinLeft, On: "a.id = c.primary_agent_id"},
		},
		Columns: []ColumnDef{
			{ID: "name", Expression: "c.name", Label: "Name", Type: ColumnText, Sortable: true, Filterable: true, DefaultVisible: true},
			{ID: "client_type", Expression: "c.client_type", Label: "Type", Type: ColumnText, Sortable: true, Filterable: true, DefaultVisible: true},
			{ID: "email", Expression: "c.email", Label: "Email", Type: ColumnText, Sortable: true, Filterable: true, DefaultVisible: true},
			{ID: "phone", Expression: "c.phone", Label: "Phone", Type: ColumnText},
			{ID: "city", Expression: "c.city", Label: "City", Type: ColumnText, Sortable: true, Filterable: true},
			{ID: "primary_agent", Expression: "a.full_name", Label: "Primary Agent", Type: ColumnText, Sortable: true, Filterable: true},
			{ID: "active_policies", Expression: "(SELECT COUNT(*) FROM policies ap WHERE ap.client_id = c.id AND ap.status = 'active')", Label: "Active Policies", Type: ColumnNumber, Sortable: true, DefaultVisible: true},
			{ID: "created_at", Expression: "c.created_at", Label: "Client Since", Type: ColumnDate, Sortable: true, Filterable: true},
		},
		Filters: []FilterDef{
			{ID: "client_type", Label: "Client Type", Type: FilterSelect, Expression: "c.client_type", ColumnID: "client_type", Options: []FilterOption{
				{Label: "Individual", Value: "individual"},
				{Label: "Business", Value: "business"},
			}},
			{ID: "name", Label: "Name", Type: FilterText, Expression: "c.name", ColumnID: "name"},
			{ID: "city", Label: "City", Type: FilterText, Expression: "c.city", ColumnID: "city"},
			{ID: "created_at", Label: "Client Since", Type: FilterDate, Expression: "c.created_at", ColumnID: "created_at"},
		},
	}
}

func agentsSource() ReportDataSource {
	return ReportDataSource{
		ID:         "agents",
		Name:       "Agents",
		BaseEntity: "agents",
		BaseAlias:  "a",
		Joins: []Join{
			{Table: "agencies", Alias: "ag", Kind: JoinLeft, On: "ag.id = a.agency_id"},
		},
		Columns: []ColumnDef{
			{ID: "full_name", Expression: "a.full_name", Label: "Agent", Type: ColumnText, Sortable: true, Filterable: true, DefaultVisible: true},
			{ID: "license_number", Expression: "a.license_number", Label: "License #", Type: ColumnText, Sortable: true, Filterable: true, DefaultVisible: true},
			{ID: "license_state", Expression: "a.license_state", Label: "State", Type: ColumnText, Sortable: true, Filterable: true, DefaultVisible: true},
			{ID: "agency_name", Expression: "ag.name", Label: "Agency", Type: ColumnText, Sortable: true, Filterable: true},
			{ID: "hire_date", Expression: "a.hire_date", Label: "Hired", Type: ColumnDate, Sortable: true, Filterable: true},
			{ID: "active", Expression: "a.active", Label: "Active", Type: ColumnBoolean, Filterable: true, DefaultVisible: true},
		},
		Filters: []FilterDef{
			{ID: "active", Label: "Active", Type: FilterBoolean, Expression: "a.active", ColumnID: "active", Default: true},
			{ID: "license_state", Label: "License State", Type: FilterText, Expression: "a.license_state", ColumnID: "license_state"},
			{ID: "hire_date", Label: "Hire Date", Type: FilterDateRange, Expression: "a.hire_date", ColumnID: "hire_date"},
		},
	}
}

func invoicesSource() ReportDataSource {
	return ReportDataSource{
		ID:         "invoices",
		Name:       "Invoices",
		BaseEntity: "invoices",
		BaseAlias:  "i",
		Joins: []Join{
			{Table: "clients", Alias: "c", Kind: JoinInner, On: "c.id = i.client_id"},
			{Table: "policies", Alias: "p", Kind: JoinLeft, On: "p.id = i.policy_id"},
		},
		Columns: []ColumnDef{
			{ID: "invoice_number", Expression: "i.invoice_number", Label: "Invoice #", Type: ColumnText, Sortable: true, Filterable: true, DefaultVisible: true},
			{ID: "client_name", Expression: "c.name", Label: "Client", Type: ColumnText, Sortable: true, Filterable: true, DefaultVisible: true},
			{ID: "policy_number", Expression: "p.policy_number", Label: "Policy #", Type: ColumnText, Sortable: true, Filterable: true},
			{ID: "amount_due", Expression: "i.amount_due", Label: "Amount Due", Type: ColumnCurrency, Sortable: true, Filterable: true, DefaultVisible: true},
			{ID: "due_date", Expression: "i.due_date", Label: "Due", Type: ColumnDate, Sortable: true, Filterable: true, DefaultVisible: true},
			{ID: "status", Expression: "i.status", Label: "Status", Type: ColumnText, Sortable: true, Filterable: true, DefaultVisible: true},
		},
		Filters: []FilterDef{
			{ID: "status", Label: "Status", Type: FilterMultiSelect, Expression: "i.status", ColumnID: "status", Options: invoiceStatusOptions},
			{ID: "due_date", Label: "Due Date", Type: FilterDateRange, Expression: "i.due_date", ColumnID: "due_date"},
			{ID: "amount_due", Label: "Amount Due", Type: FilterNumber, Expression: "i.amount_due", ColumnID: "amount_due"},
			{ID: "client_name", Label: "Client", Type: FilterText, Expression: "c.name", ColumnID: "client_name"},
		},
	}
}

func payoutsSource() ReportDataSource {
	return ReportDataSource{
		ID:         "payouts",
		Name:       "Agent Payouts",
		BaseEntity: "agent_payouts",
		BaseAlias:  "ap",
		Joins: []Join{
			{Table: "agents", Alias: "a", Kind: JoinInner, On: "a.id = ap.agent_id"},
		},
		Columns: []ColumnDef{
			{ID: "agent_name", Expression: "a.full_name", Label: "Agent", Type: ColumnText, Sortable: true, Filterable: true, DefaultVisible: true},
			{ID: "payout_date", Expression: "ap.payout_date", Label: "Payout Date", Type: ColumnDate, Sortable: true, Filterable: true, DefaultVisible: true},
			{ID: "gross_amount", Expression: "ap.gross_amount", Label: "Gross", Type: ColumnCurrency, Sortable: true, DefaultVisible: true},
			{ID: "net_amount", Expression: "ap.net_amount", Label: "Net", Type: ColumnCurrency, Sortable: true, Filterable: true, DefaultVisible: true},
			{ID: "status", Expression: "ap.status", Label: "Status", Type: ColumnText, Sortable: true, Filterable: true},
		},
		Filters: []FilterDef{
			{ID: "payout_date", Label: "Payout Date", Type: FilterDateRange, Expression: "ap.payout_date", ColumnID: "payout_date", Required: true},
			{ID: "agent_name", Label: "Agent", Type: FilterText, Expression: "a.full_name", ColumnID: "agent_name"},
			{ID: "status", Label: "Status", Type: FilterSelect, Expression: "ap.status", ColumnID: "status", Options: []FilterOption{
				{Label: "Scheduled", Value: "scheduled"},
				{Label: "Paid", Value: "paid"},
				{Label: "Held", Value: "held"},
			}},
		},
	}
}
