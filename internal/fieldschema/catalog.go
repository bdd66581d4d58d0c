package fieldschema

func driver(key, label string, vt ValueType, required bool) FieldDefinition {
	group := GroupDriverOptional
	if required {
		group = GroupDriverRequired
	}
	return FieldDefinition{Key: key, Label: label, ValueType: vt, Group: group, Required: required}
}

func opening(key, label string) FieldDefinition {
	def := driver(key, label, ValueTypeMonetary, false)
	def.FirstPeriodOnly = true
	return def
}

func override(group Group, key, label string) FieldDefinition {
	return FieldDefinition{Key: key, Label: label, ValueType: ValueTypeMonetary, Group: group, IsOverride: true}
}

// DefaultDefinitions is the catalog shipped with the generated templates.
var DefaultDefinitions = []FieldDefinition{
	driver("revenue", "Receita Bruta", ValueTypeMonetary, true),
	driver("revenueGrowth", "Crescimento da Receita", ValueTypePercentage, false),
	driver("costOfGoodsSoldPercent", "Custo das Mercadorias (% Receita)", ValueTypePercentage, true),
	driver("operatingExpenses", "Despesas Operacionais", ValueTypeMonetary, true),
	driver("taxRate", "Alíquota de Impostos", ValueTypePercentage, true),
	driver("accountsReceivableDays", "Prazo Médio de Recebimento", ValueTypeDays, true),
	driver("inventoryDays", "Prazo Médio de Estoque", ValueTypeDays, true),
	driver("accountsPayableDays", "Prazo Médio de Pagamento", ValueTypeDays, true),
	driver("depreciationRate", "Taxa de Depreciação", ValueTypePercentage, false),
	driver("capex", "Investimentos (CAPEX)", ValueTypeMonetary, false),
	driver("interestRate", "Taxa de Juros", ValueTypePercentage, false),
	driver("newDebt", "Novas Captações", ValueTypeMonetary, false),
	driver("debtRepayment", "Amortização de Dívida", ValueTypeMonetary, false),
	driver("dividendPayout", "Distribuição de Dividendos", ValueTypePercentage, false),
	opening("openingCash", "Caixa Inicial"),
	opening("openingFixedAssets", "Imobilizado Inicial"),
	opening("openingDebt", "Dívida Inicial"),
	opening("openingEquity", "Patrimônio Líquido Inicial"),

	override(GroupOverrideProfitLoss, "override_revenue", "Receita Real"),
	override(GroupOverrideProfitLoss, "override_cogs", "CMV Real"),
	override(GroupOverrideProfitLoss, "override_grossProfit", "Lucro Bruto Real"),
	override(GroupOverrideProfitLoss, "override_operatingExpenses", "Despesas Operacionais Reais"),
	override(GroupOverrideProfitLoss, "override_ebitda", "EBITDA Real"),
	override(GroupOverrideProfitLoss, "override_depreciation", "Depreciação Real"),
	override(GroupOverrideProfitLoss, "override_interestExpense", "Despesa Financeira Real"),
	override(GroupOverrideProfitLoss, "override_taxes", "Impostos Reais"),
	override(GroupOverrideProfitLoss, "override_netProfit", "Lucro Líquido Real"),

	override(GroupOverrideBalance, "override_cash", "Caixa Real"),
	override(GroupOverrideBalance, "override_accountsReceivable", "Contas a Receber Real"),
	override(GroupOverrideBalance, "override_inventory", "Estoque Real"),
	override(GroupOverrideBalance, "override_fixedAssets", "Imobilizado Real"),
	override(GroupOverrideBalance, "override_totalAssets", "Ativo Total Real"),
	override(GroupOverrideBalance, "override_accountsPayable", "Fornecedores Real"),
	override(GroupOverrideBalance, "override_debt", "Dívida Real"),
	override(GroupOverrideBalance, "override_equity", "Patrimônio Líquido Real"),

	override(GroupOverrideCashFlow, "override_operatingCashFlow", "Fluxo de Caixa Operacional Real"),
	override(GroupOverrideCashFlow, "override_investingCashFlow", "Fluxo de Caixa de Investimento Real"),
	override(GroupOverrideCashFlow, "override_financingCashFlow", "Fluxo de Caixa de Financiamento Real"),
	override(GroupOverrideCashFlow, "override_netCashFlow", "Variação Líquida de Caixa Real"),
}

// Default is the process-wide read-only registry built from DefaultDefinitions.
var Default = MustRegistry(DefaultDefinitions)
