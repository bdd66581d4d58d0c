package domain

// Variant names a recognized workbook template family.
type Variant string

const (
	VariantSmart   Variant = "smart"
	VariantBasic   Variant = "basic"
	VariantGeneric Variant = "generic"
)

// SheetRole is the logical purpose a worksheet serves.
type SheetRole string

const (
	RoleDrivers          SheetRole = "drivers"
	RoleOverrideProfit   SheetRole = "override_pl"
	RoleOverrideBalance  SheetRole = "override_bs"
	RoleOverrideCashFlow SheetRole = "override_cf"
	RoleInstructions     SheetRole = "instructions"
)

// OverrideRoles lists override roles in merge order.
var OverrideRoles = []SheetRole{RoleOverrideProfit, RoleOverrideBalance, RoleOverrideCashFlow}

// WorkbookStructure is built once per ingestion run and not modified after
// period resolution fills DeclaredPeriodCount.
type WorkbookStructure struct {
	Variant             Variant              `json:"variant"`
	SheetRoles          map[SheetRole]string `json:"sheetRoles"`
	DeclaredPeriodCount int                  `json:"declaredPeriodCount"`
}

// Sheet returns the sheet assigned to role.
func (s WorkbookStructure) Sheet(role SheetRole) (string, bool) {
	name, ok := s.SheetRoles[role]
	return name, ok && name != ""
}
